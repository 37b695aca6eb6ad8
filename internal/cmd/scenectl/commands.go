package scenectl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
	"github.com/louisbranch/courtroom.space/internal/services/scene/authz"
	sceneclient "github.com/louisbranch/courtroom.space/internal/services/scene/client"
)

// ErrSceneInvalid is returned by validate when the document has issues.
var ErrSceneInvalid = errors.New("scene is invalid")

func newValidateCommand(env *commandEnv) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a scene document against the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := env.readDocument(args[0])
			if err != nil {
				return err
			}
			var issues []attorney.Issue
			if remote {
				c, err := env.client()
				if err != nil {
					return err
				}
				resp, err := c.ValidateScene(cmd.Context(), data)
				if err != nil {
					return err
				}
				issues = resp.Issues
			} else {
				roster, err := env.roster()
				if err != nil {
					return err
				}
				scene, err := attorney.ImportScene(data)
				if err != nil {
					return err
				}
				var verr *attorney.ValidationError
				if err := attorney.ValidateScene(scene, roster); errors.As(err, &verr) {
					issues = verr.Issues
				} else if err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintln(out, "ok")
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintf(out, "%s\t%s\t%s\n", issue.Path, issue.Code, issue.Message)
			}
			return fmt.Errorf("%w: %d issue(s)", ErrSceneInvalid, len(issues))
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "validate through the scene API instead of locally")
	return cmd
}

func newNormalizeCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize FILE",
		Short: "Print a scene document in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := env.readDocument(args[0])
			if err != nil {
				return err
			}
			scene, err := attorney.ImportScene(data)
			if err != nil {
				return err
			}
			encoded, err := attorney.EncodeSceneIndent(scene)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return err
		},
	}
}

func newDetectCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "detect FILE",
		Short: "Report whether a document is a scene, a roster or unknown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := env.readDocument(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), attorney.DetectDocument(data))
			return err
		},
	}
}

func newImportCommand(env *commandEnv) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store a scene document as a new scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := env.readDocument(args[0])
			if err != nil {
				return err
			}
			c, err := env.client()
			if err != nil {
				return err
			}
			created, err := c.CreateScene(cmd.Context(), name, data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "scene name")
	return cmd
}

func newListCommand(env *commandEnv) *cobra.Command {
	var req sceneclient.ListRequest
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := env.client()
			if err != nil {
				return err
			}
			page, err := c.ListScenes(cmd.Context(), req)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tFRAMES\tGROUPS\tUPDATED")
			for _, scene := range page.Scenes {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", scene.ID, scene.Name, scene.FrameCount, scene.GroupCount, scene.UpdatedAt.UTC().Format(time.RFC3339))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if page.NextPageToken != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "next page: --page-token %s\n", page.NextPageToken)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&req.PageSize, "page-size", 0, "maximum scenes to return")
	cmd.Flags().StringVar(&req.PageToken, "page-token", "", "token from a previous page")
	cmd.Flags().StringVar(&req.Filter, "filter", "", "AIP-160 filter, e.g. 'frame_count > 10'")
	return cmd
}

func newGetCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Print a stored scene document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.client()
			if err != nil {
				return err
			}
			resp, err := c.GetScene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, resp.Scene, "", "  "); err != nil {
				return fmt.Errorf("format scene: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), buf.String())
			return err
		},
	}
}

func newPutCommand(env *commandEnv) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "put ID FILE",
		Short: "Replace a stored scene document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := env.readDocument(args[1])
			if err != nil {
				return err
			}
			c, err := env.client()
			if err != nil {
				return err
			}
			updated, err := c.UpdateScene(cmd.Context(), args[0], name, data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d frames\n", updated.ID, updated.Name, updated.FrameCount)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new scene name (keeps the stored name when empty)")
	return cmd
}

func newDeleteCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.client()
			if err != nil {
				return err
			}
			return c.DeleteScene(cmd.Context(), args[0])
		},
	}
}

func newGrantCommand(env *commandEnv) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Sign a writer grant with the configured private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := authz.DecodePrivateKey(env.cfg.PrivateKey)
			if err != nil {
				return err
			}
			grant, err := authz.IssueWriterGrant(key, authz.GrantRequest{
				Issuer:   env.cfg.Issuer,
				Audience: env.cfg.Audience,
				Subject:  subject,
				TTL:      ttl,
				Now:      time.Now(),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), grant)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "scenectl", "grant subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "grant lifetime")
	return cmd
}
