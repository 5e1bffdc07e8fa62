package service

import (
	"context"
	"strings"
)

// Prompt fallbacks.
const (
	defaultDisplayName = "Aluno"
	defaultProgram     = "Não especificado"
	noStudentData      = "Nenhum dado específico cadastrado ainda."
)

const promptRules = `REGRAS IMPORTANTES:
1. Use APENAS informações da base de conhecimento e dos dados específicos deste aluno
2. Quando o aluno perguntar sobre NOTAS, HISTÓRICO ou GRUPO, use APENAS os dados da seção "DADOS ESPECÍFICOS DESTE ALUNO"
3. NÃO forneça dados de outros alunos
4. NÃO use asteriscos, markdown ou negrito
5. Organize as respostas com estrutura clara
6. Seja pessoal e se refira ao aluno pelo nome quando apropriado

FORMATO PARA LISTAR CONTEÚDOS:

[CICLO_X]
[SEMANA_Y] Título

[MAT_VIDEO] Nome do vídeo
[LINK] url

[MAT_SLIDE] Nome do slide
[LINK] url

[SEPARADOR]

IMPORTANTE: Seja concisa e objetiva
`

type knowledgeSource interface {
	Load(ctx context.Context) string
}

// PromptService assembles the system prompt that seeds every rolling history.
type PromptService struct {
	knowledge knowledgeSource
	users     userStore
	students  studentStore
}

// NewPromptService constructs a PromptService instance.
func NewPromptService(knowledge knowledgeSource, users userStore, students studentStore) *PromptService {
	return &PromptService{knowledge: knowledge, users: users, students: students}
}

// BuildSystemPrompt renders the persona, the knowledge base and the student block of ra.
// Nothing is cached: edits to the data files show up on the next seed.
func (s *PromptService) BuildSystemPrompt(ctx context.Context, ra string) string {
	name, program := defaultDisplayName, defaultProgram
	if user, ok := s.users.FindByRegistrationID(ctx, ra); ok {
		name, program = user.FullName, user.Program
	}

	studentData := noStudentData
	if block, ok := s.students.FindBlock(ctx, ra); ok && block != "" {
		studentData = block
	}

	var b strings.Builder
	b.WriteString("Você é UniHelp, assistente acadêmica PERSONALIZADA da UniEVANGÉLICA.\n\n")
	b.WriteString("INFORMAÇÕES DO USUÁRIO LOGADO:\n")
	b.WriteString("Nome: " + name + "\n")
	b.WriteString("RA: " + ra + "\n")
	b.WriteString("Curso: " + program + "\n\n")
	b.WriteString("BASE DE CONHECIMENTO GERAL:\n")
	b.WriteString(s.knowledge.Load(ctx) + "\n\n")
	b.WriteString("DADOS ESPECÍFICOS DESTE ALUNO:\n")
	b.WriteString(studentData + "\n\n")
	b.WriteString(promptRules)
	return b.String()
}
