// Package scenectl implements the scene command-line client: local document
// checks plus remote calls against the scene API.
package scenectl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	entrypoint "github.com/louisbranch/courtroom.space/internal/platform/cmd"
	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
	sceneclient "github.com/louisbranch/courtroom.space/internal/services/scene/client"
)

// Config holds scenectl defaults read from the environment.
type Config struct {
	SceneAddr  string `env:"COURTROOM_SPACE_SCENE_ADDR" envDefault:"localhost:8090"`
	Grant      string `env:"COURTROOM_SPACE_WRITER_GRANT"`
	PrivateKey string `env:"COURTROOM_SPACE_WRITER_PRIVATE_KEY"`
	Issuer     string `env:"COURTROOM_SPACE_WRITER_ISSUER" envDefault:"scenectl"`
	Audience   string `env:"COURTROOM_SPACE_WRITER_AUDIENCE" envDefault:"scene"`
	RosterPath string `env:"COURTROOM_SPACE_SCENE_ROSTER_PATH"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes scenectl with args.
func Run(ctx context.Context, cfg Config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := NewRootCommand(&cfg, stdin)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the scenectl command tree.
func NewRootCommand(cfg *Config, stdin io.Reader) *cobra.Command {
	if stdin == nil {
		stdin = os.Stdin
	}
	root := &cobra.Command{
		Use:           "scenectl",
		Short:         "Inspect, validate and manage courtroom scenes",
		Long:          "scenectl checks scene documents locally and manages stored scenes through the scene API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.SceneAddr, "addr", cfg.SceneAddr, "scene API address")
	root.PersistentFlags().StringVar(&cfg.Grant, "grant", cfg.Grant, "writer grant for mutating calls")

	env := &commandEnv{cfg: cfg, stdin: stdin}
	root.AddCommand(
		newValidateCommand(env),
		newNormalizeCommand(env),
		newDetectCommand(env),
		newImportCommand(env),
		newListCommand(env),
		newGetCommand(env),
		newPutCommand(env),
		newDeleteCommand(env),
		newGrantCommand(env),
	)
	return root
}

// commandEnv is shared by every subcommand.
type commandEnv struct {
	cfg   *Config
	stdin io.Reader
}

// readDocument reads path, or stdin when path is "-".
func (e *commandEnv) readDocument(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "-" {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (e *commandEnv) roster() (*attorney.Roster, error) {
	path := strings.TrimSpace(e.cfg.RosterPath)
	if path == "" {
		return attorney.DefaultRoster(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return attorney.LoadRoster(f)
}

func (e *commandEnv) client() (*sceneclient.Client, error) {
	return sceneclient.New(e.cfg.SceneAddr, sceneclient.WithWriterGrant(e.cfg.Grant))
}
