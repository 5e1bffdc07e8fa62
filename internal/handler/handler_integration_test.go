package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/noah-isme/unihelp-api/internal/middleware"
	"github.com/noah-isme/unihelp-api/internal/repository"
	"github.com/noah-isme/unihelp-api/internal/service"
	"github.com/noah-isme/unihelp-api/pkg/flatfile"
	"github.com/noah-isme/unihelp-api/pkg/llm"
)

const testCookie = "unihelp_session"

type scriptedModel struct {
	last []llm.Message
}

func (m *scriptedModel) Complete(_ context.Context, messages []llm.Message) (string, error) {
	m.last = messages
	return "**Olá!**\n[CICLO_1]\nSuas notas estão zeradas.", nil
}

type apiFixture struct {
	router  *gin.Engine
	dataDir string
	model   *scriptedModel
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "banco_dados.txt"), []byte("Ciclo 1: Semana 1 - Introdução"), 0o644))

	logr := zap.NewNop()
	store, err := flatfile.NewStore(dataDir, logr)
	require.NoError(t, err)

	users := repository.NewUserFileRepository(store, "usuarios.txt", logr)
	students := repository.NewStudentFileRepository(store, "dados_alunos.txt", logr)
	conversations := repository.NewConversationFileRepository(store, "historico_conversas.txt", logr)
	knowledge := repository.NewKnowledgeFileRepository(filepath.Join(dataDir, "banco_dados.txt"), logr)
	sessions := repository.NewMemorySessionRepository(time.Hour)

	model := &scriptedModel{}
	metrics := service.NewMetricsService()
	credentials := service.NewCredentialService(users, students, service.SHA256Hasher{}, validator.New(), logr)
	prompts := service.NewPromptService(knowledge, users, students)
	chat := service.NewChatService(sessions, conversations, prompts, model, metrics, logr, service.ChatConfig{MaxHistory: 9, KeepRecent: 8})
	tokens := service.NewSessionService(service.SessionTokenConfig{Secret: "test", TTL: time.Hour}, sessions)
	convs := service.NewConversationService(conversations, 50, logr)

	r := gin.New()
	Router{
		Auth:          NewAuthHandler(credentials, tokens, chat, metrics, CookieConfig{Name: testCookie}),
		Chat:          NewChatHandler(chat),
		Conversations: NewConversationHandler(convs, service.NewExportService(convs, logr, nil, nil)),
		Students:      NewStudentHandler(service.NewStudentService(students)),
		Metrics:       NewMetricsHandler(metrics, nil),
	}.Register(r, "/api/v1",
		internalmiddleware.Session(tokens, testCookie),
		internalmiddleware.OptionalSession(tokens, testCookie))

	return &apiFixture{router: r, dataDir: dataDir, model: model}
}

func (f *apiFixture) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

const registerBody = `{"ra":"2024001","nome_completo":"Ana Souza","email":"ana@example.com","cpf":"12345678900","curso":"Engenharia de Software","password":"segredo1","confirm_password":"segredo1"}`

func TestAPIStudentJourney(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/auth/register", registerBody, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "RA já cadastrado no sistema!")

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", `{"ra":"2024001","password":"errada"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "RA ou senha incorretos.")

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", `{"ra":"2024001","password":"segredo1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(t, rec)

	rec = f.do(t, http.MethodGet, "/api/v1/chat", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"historico":[]}}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/chat/messages", `{"pergunta":"Quais minhas notas?"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var answer struct {
		Data struct {
			Resposta string `json:"resposta"`
			Sucesso  bool   `json:"sucesso"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.True(t, answer.Data.Sucesso)
	assert.Equal(t, "<p>Olá!</p>\n<div class=\"ciclo-header\">📚 CICLO 1</div>\n<p>Suas notas estão zeradas.</p>", answer.Data.Resposta)

	require.NotEmpty(t, f.model.last)
	system := f.model.last[0].Content
	assert.Contains(t, system, "Nome: Ana Souza")
	assert.Contains(t, system, "Ciclo 1: Semana 1 - Introdução")
	assert.Contains(t, system, "[RA:2024001]")
	assert.Contains(t, system, "Ciclo 1|AFE - Avaliação Final de entrega|0.00")

	rec = f.do(t, http.MethodPost, "/api/v1/chat/messages", `{"pergunta":"   "}`, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pergunta vazia")

	rec = f.do(t, http.MethodGet, "/api/v1/conversations", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pergunta":"Quais minhas notas?"`)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = f.do(t, http.MethodGet, "/api/v1/conversations/export?format=csv", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "conversas_2024001_")
	assert.Contains(t, rec.Body.String(), "Quais minhas notas?")

	rec = f.do(t, http.MethodGet, "/api/v1/students/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"grupo":"Não atribuído"`)

	rec = f.do(t, http.MethodGet, "/api/v1/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nome":"Ana Souza"`)

	rec = f.do(t, http.MethodPost, "/api/v1/chat/reset", "", cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/v1/chat", "", cookie)
	assert.JSONEq(t, `{"data":{"historico":[]}}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/auth/logout", "", cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	raw, err := os.ReadFile(filepath.Join(f.dataDir, "historico_conversas.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[RA:2024001|DATA:")
	assert.Contains(t, string(raw), "PERGUNTA: Quais minhas notas?")
	assert.Contains(t, string(raw), "[FIM_CONVERSA]")
}

func TestAPIRequiresSession(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{"/api/v1/chat", "/api/v1/conversations", "/api/v1/students/me", "/api/v1/auth/me"} {
		rec := f.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := f.do(t, http.MethodPost, "/api/v1/chat/messages", `{"pergunta":"oi"}`, &http.Cookie{Name: testCookie, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAPIRejectsTokenAfterLogout(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", `{"ra":"2024001","password":"segredo1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(t, rec)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/logout", "", cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/chat", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "SESSION_NOT_FOUND")

	rec = f.do(t, http.MethodPost, "/api/v1/chat/messages", `{"pergunta":"ainda estou aqui?"}`, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.model.last)

	rec = f.do(t, http.MethodGet, "/api/v1/chat", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", `{"ra":"2024001","password":"segredo1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/v1/chat", "", sessionCookie(t, rec))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRegisterValidationMessages(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", `{"ra":"1","nome_completo":"A","email":"a@b","cpf":"1","curso":"X","password":"abc12","confirm_password":"abc12"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "A senha deve ter no mínimo 6 caracteres.")

	rec = f.do(t, http.MethodPost, "/api/v1/auth/register", `{"ra":"1"`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goroutines_total")
}

func TestAPIKeepsStudentsApart(t *testing.T) {
	f := newAPIFixture(t)

	other := "12|Bruno [RA:1]|bruno@example.com|999|ADS|" + service.HashPassword("segredo2") + "|2024-01-01 09:00:00\n"
	require.NoError(t, os.WriteFile(filepath.Join(f.dataDir, "usuarios.txt"), []byte(other), 0o644))
	otherBlock := "\n[RA:12]\nNOME: Bruno [RA:1]\nCURSO: ADS\nGRUPO: Grupo 9\n\nNOTAS:\nCiclo 1|AFE - Avaliação Final de entrega|9.75\n\nHISTORICO:\n[FIM]\n\n"
	require.NoError(t, os.WriteFile(filepath.Join(f.dataDir, "dados_alunos.txt"), []byte(otherBlock), 0o644))
	otherTurn := "[RA:12|DATA:2024-01-01 10:00:00]\nPERGUNTA: minha nota [RA:1|x] é 9.75\nRESPOSTA: segredo do Bruno\n[FIM_CONVERSA]\n\n"
	require.NoError(t, os.WriteFile(filepath.Join(f.dataDir, "historico_conversas.txt"), []byte(otherTurn), 0o644))

	body := `{"ra":"1","nome_completo":"Ana Souza","email":"ana@example.com","cpf":"123","curso":"Engenharia de Software","password":"segredo1","confirm_password":"segredo1"}`
	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", `{"ra":"1","password":"segredo1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(t, rec)

	rec = f.do(t, http.MethodPost, "/api/v1/chat/messages", `{"pergunta":"Quais minhas notas?"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	system := f.model.last[0].Content
	assert.Contains(t, system, "Nome: Ana Souza\nRA: 1\n")
	assert.Contains(t, system, "DADOS ESPECÍFICOS DESTE ALUNO:\n[RA:1]\nNOME: Ana Souza")
	assert.Contains(t, system, "Ciclo 1|AFE - Avaliação Final de entrega|0.00")
	assert.NotContains(t, system, "[RA:12]")
	assert.NotContains(t, system, "Bruno")
	assert.NotContains(t, system, "9.75")

	rec = f.do(t, http.MethodGet, "/api/v1/conversations", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
	assert.Contains(t, rec.Body.String(), `"pergunta":"Quais minhas notas?"`)
	assert.NotContains(t, rec.Body.String(), "segredo do Bruno")

	rec = f.do(t, http.MethodGet, "/api/v1/conversations/export?format=csv", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "segredo do Bruno")

	rec = f.do(t, http.MethodGet, "/api/v1/students/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "9.75")
}
