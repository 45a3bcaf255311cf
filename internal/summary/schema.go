package summary

// Schema is the JSON Schema the extraction model is constrained to.
// Field descriptions double as extraction guidance, so they stay in
// Portuguese like the prompts.
func Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"leito": map[string]any{
				"type":        "string",
				"description": "Número do leito (apenas o número, ex: '1', '2', '3')",
			},
			"nome_paciente": map[string]any{
				"type":        "string",
				"description": "Nome completo do paciente como mencionado",
			},
			"diagnosticos": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Lista de PROBLEMAS MÉDICOS ATUAIS que requerem tratamento.",
			},
			"pendencias": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Lista de tarefas/avaliações aguardando resolução e objetivos terapêuticos.",
			},
			"condutas": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Lista de ações tomadas ou planejadas. SEMPRE iniciar com verbo no INFINITIVO.",
			},
		},
		"required": []string{"leito", "nome_paciente", "diagnosticos", "pendencias", "condutas"},
	}
}
