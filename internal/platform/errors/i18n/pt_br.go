package i18n

var ptBRMessages = map[Code]string{
	CodeSceneIDEmpty:       "O id da cena é obrigatório.",
	CodeSceneNameEmpty:     "O nome da cena é obrigatório.",
	CodeSceneMalformed:     "Não foi possível ler o documento da cena: {{.Reason}}",
	CodeSceneInvalid:       "A cena tem {{.Count}} problema(s); primeiro: {{.First}}",
	CodeCharacterNotFound:  "Personagem {{.ID}} não foi encontrado.",
	CodeCharacterInvalidID: "{{.ID}} não é um id de personagem válido.",
	CodeFilterInvalid:      "Não foi possível interpretar o filtro: {{.Reason}}",
	CodePageSizeInvalid:    "O tamanho da página deve estar entre 1 e {{.Max}}.",
	CodePageTokenInvalid:   "O token de página não é válido.",
	CodeWriteGrantMissing:  "Esta requisição exige uma credencial de escrita.",
	CodeWriteGrantInvalid:  "A credencial de escrita não é válida.",
	CodeWriteGrantExpired:  "A credencial de escrita expirou.",
	CodeWriteGrantMismatch: "A credencial de escrita não corresponde a este serviço ({{.Field}}).",
	CodeNotFound:           "O recurso {{.Resource}} não foi encontrado.",
	CodeAlreadyExists:      "O recurso {{.Resource}} já existe.",
	CodeUnknown:            "Algo deu errado.",
}
