package assistant

import (
	"strings"
	"text/template"
)

// profile is the fixed shape of one assistant operation.
type profile struct {
	name        string
	system      string
	template    *template.Template
	maxTokens   int
	temperature float64
}

func mustPrompt(name, body string) *template.Template {
	return template.Must(template.New(name).Option("missingkey=zero").Parse(body))
}

var (
	suggestionsProfile = profile{
		name:        "content_suggestions",
		system:      "Você é um assistente criativo especializado em worldbuilding e criação de conteúdo para RPG e ficção. Forneça sugestões detalhadas, criativas e coerentes.",
		maxTokens:   1000,
		temperature: 0.8,
		template: mustPrompt("content_suggestions", `Preciso de sugestões criativas para desenvolver um artigo de worldbuilding.

**Título:** {{.Title}}
**Categoria:** {{.Category}}
{{- if .WorldContext}}
**Contexto do Mundo:** {{.WorldContext}}
{{- end}}
{{- if .ExistingContent}}
**Conteúdo Existente:** {{.ExistingContent}}
{{- end}}

Por favor, forneça:
1. 3-5 aspectos principais para desenvolver
2. Detalhes específicos para cada aspecto
3. Conexões possíveis com outros elementos do mundo
4. Elementos únicos que tornariam este artigo memorável

Seja criativo, detalhado e mantenha consistência com o contexto fornecido.`),
	}

	ideasProfile = profile{
		name:        "article_ideas",
		system:      "Você é um especialista em worldbuilding. Gere ideias criativas e originais para artigos que enriqueçam o mundo criado pelo usuário.",
		maxTokens:   800,
		temperature: 0.9,
		template: mustPrompt("article_ideas", `Baseado no seguinte contexto de mundo, gere ideias criativas para novos artigos:

**Contexto do Mundo:** {{.WorldContext}}
{{- if .Category}}
**Categoria Específica:** {{.Category}}
{{- end}}

Gere 8-10 ideias de artigos que:
1. Sejam únicos e interessantes
2. Se conectem bem com o mundo existente
3. Ofereçam potencial para desenvolvimento rico
4. Cubram diferentes aspectos do worldbuilding

Para cada ideia, forneça:
- Título sugerido
- Breve descrição (1-2 frases)
- Categoria recomendada`),
	}

	expandProfile = profile{
		name:        "expand_content",
		system:      "Você é um escritor especializado em expandir e enriquecer conteúdo criativo. Mantenha consistência com o material existente.",
		maxTokens:   1200,
		temperature: 0.7,
		template: mustPrompt("expand_content", `Expanda o seguinte conteúdo com mais detalhes e profundidade:

**Conteúdo Original:** {{.Content}}
{{- if .Context}}
**Contexto:** {{.Context}}
{{- end}}
**Direção da Expansão:** {{.Direction}}

Adicione detalhes ricos, mantenha consistência e torne o conteúdo mais envolvente.`),
	}

	namesProfile = profile{
		name:        "generate_names",
		system:      "Você é um especialista em criar nomes únicos e memoráveis para elementos de ficção e RPG.",
		maxTokens:   500,
		temperature: 0.9,
		template: mustPrompt("generate_names", `Gere {{.Count}} nomes únicos e criativos para: {{.Type}}
{{- if .Context}}
Contexto: {{.Context}}
{{- end}}

Os nomes devem ser:
- Únicos e memoráveis
- Apropriados para o contexto
- Fáceis de pronunciar
- Evocativos e interessantes`),
	}

	analysisProfile = profile{
		name:        "analyze_content",
		system:      "Você é um editor experiente especializado em ficção e worldbuilding. Forneça análises construtivas e sugestões práticas.",
		maxTokens:   1000,
		temperature: 0.6,
		template: mustPrompt("analyze_content", `Analise o seguinte {{.Type}} e forneça sugestões de melhoria:

{{.Content}}

Forneça:
1. Pontos fortes do texto
2. Áreas que podem ser melhoradas
3. Sugestões específicas de edição
4. Ideias para expandir o conteúdo`),
	}
)

func (p profile) render(data any) (string, error) {
	var b strings.Builder
	if err := p.template.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
