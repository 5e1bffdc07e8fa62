package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/unihelp-api/internal/models"
)

type staticKnowledge string

func (k staticKnowledge) Load(context.Context) string { return string(k) }

func TestBuildSystemPromptWithStudentData(t *testing.T) {
	users := newMockUserStore(&models.UserRecord{RegistrationID: "2024001", FullName: "Ana Souza", Program: "Engenharia de Software"})
	students := &mockStudentStore{blocks: map[string]string{"2024001": "[RA:2024001]\nGRUPO: Grupo 4\n[FIM]"}}
	svc := NewPromptService(staticKnowledge("Calendário: aulas começam em fevereiro."), users, students)

	prompt := svc.BuildSystemPrompt(context.Background(), "2024001")

	assert.True(t, strings.HasPrefix(prompt, "Você é UniHelp, assistente acadêmica PERSONALIZADA da UniEVANGÉLICA."))
	assert.Contains(t, prompt, "Nome: Ana Souza\nRA: 2024001\nCurso: Engenharia de Software")
	assert.Contains(t, prompt, "BASE DE CONHECIMENTO GERAL:\nCalendário: aulas começam em fevereiro.")
	assert.Contains(t, prompt, "DADOS ESPECÍFICOS DESTE ALUNO:\n[RA:2024001]\nGRUPO: Grupo 4\n[FIM]")
	assert.Contains(t, prompt, "NÃO forneça dados de outros alunos")
	assert.Contains(t, prompt, "NÃO use asteriscos, markdown ou negrito")
	assert.Contains(t, prompt, "[MAT_VIDEO] Nome do vídeo\n[LINK] url")
	assert.NotContains(t, prompt, noStudentData)
}

func TestBuildSystemPromptFallbacks(t *testing.T) {
	svc := NewPromptService(staticKnowledge("Nenhum contexto específico fornecido."), newMockUserStore(), &mockStudentStore{})

	prompt := svc.BuildSystemPrompt(context.Background(), "777")

	assert.Contains(t, prompt, "Nome: Aluno\nRA: 777\nCurso: Não especificado")
	assert.Contains(t, prompt, "DADOS ESPECÍFICOS DESTE ALUNO:\nNenhum dado específico cadastrado ainda.")
	assert.Contains(t, prompt, "Nenhum contexto específico fornecido.")
}
