package repository

import (
	"fmt"
	"strings"

	"github.com/noah-isme/unihelp-api/internal/models"
	"github.com/noah-isme/unihelp-api/pkg/flatfile"
)

// Block markers of the student and conversation files.
const (
	StudentEndMarker      = "[FIM]"
	ConversationEndMarker = "[FIM_CONVERSA]"

	questionPrefix = "PERGUNTA: "
	answerPrefix   = "RESPOSTA: "
	unknownDate    = "N/A"
)

// StudentStartMarker opens the block of one student.
func StudentStartMarker(ra string) string {
	return "[RA:" + ra + "]"
}

// ConversationOwnerMarker prefixes every conversation header of one student.
func ConversationOwnerMarker(ra string) string {
	return "[RA:" + ra + "|"
}

// EncodeUserLine renders RA|NOME|EMAIL|CPF|CURSO|SENHA_HASH|DATA_CADASTRO.
func EncodeUserLine(u *models.UserRecord) string {
	return flatfile.JoinFields(u.RegistrationID, u.FullName, u.Email, u.NationalID, u.Program, u.PasswordHash, u.RegisteredAt)
}

// DecodeUserLine parses a user line; lines with fewer than six fields are rejected.
func DecodeUserLine(line string) (*models.UserRecord, bool) {
	parts := flatfile.SplitFields(line)
	if len(parts) < 6 {
		return nil, false
	}
	u := &models.UserRecord{
		RegistrationID: parts[0],
		FullName:       parts[1],
		Email:          parts[2],
		NationalID:     parts[3],
		Program:        parts[4],
		PasswordHash:   parts[5],
		RegisteredAt:   unknownDate,
	}
	if len(parts) > 6 {
		u.RegisteredAt = parts[6]
	}
	return u, true
}

// EncodeStudentBlock renders the marker-bounded student block.
func EncodeStudentBlock(rec models.StudentRecord) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(StudentStartMarker(rec.RegistrationID) + "\n")
	fmt.Fprintf(&b, "NOME: %s\n", rec.Name)
	fmt.Fprintf(&b, "CURSO: %s\n", rec.Program)
	fmt.Fprintf(&b, "GRUPO: %s\n\n", rec.Group)
	b.WriteString("NOTAS:\n")
	for _, g := range rec.Grades {
		b.WriteString(flatfile.JoinFields(g.Cycle, g.Assessment, g.Score) + "\n")
	}
	b.WriteString("\nHISTORICO:\n")
	for _, h := range rec.History {
		b.WriteString(flatfile.JoinFields(h.Course, h.Term, h.Score, h.Status) + "\n")
	}
	b.WriteString(StudentEndMarker + "\n\n")
	return b.String()
}

// DecodeStudentBlock parses a block produced by EncodeStudentBlock or edited by hand.
// Unknown lines are ignored; malformed rows are skipped.
func DecodeStudentBlock(block string) (*models.StudentRecord, error) {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "[RA:") || !strings.HasSuffix(strings.TrimSpace(lines[0]), "]") {
		return nil, fmt.Errorf("student block: missing start marker")
	}
	header := strings.TrimSpace(lines[0])
	rec := &models.StudentRecord{RegistrationID: strings.TrimSuffix(strings.TrimPrefix(header, "[RA:"), "]")}

	section := ""
	for _, raw := range lines[1:] {
		line := strings.TrimSpace(raw)
		switch {
		case line == "" || line == StudentEndMarker:
			continue
		case line == "NOTAS:":
			section = "grades"
			continue
		case line == "HISTORICO:":
			section = "history"
			continue
		}
		if key, value, ok := labelledValue(line); ok && section == "" {
			switch key {
			case "NOME":
				rec.Name = value
			case "CURSO":
				rec.Program = value
			case "GRUPO":
				rec.Group = value
			}
			continue
		}
		fields := flatfile.SplitFields(line)
		switch {
		case section == "grades" && len(fields) >= 3:
			rec.Grades = append(rec.Grades, models.GradeEntry{
				Cycle: strings.TrimSpace(fields[0]), Assessment: strings.TrimSpace(fields[1]), Score: strings.TrimSpace(fields[2]),
			})
		case section == "history" && len(fields) >= 4:
			rec.History = append(rec.History, models.CourseHistoryEntry{
				Course: strings.TrimSpace(fields[0]), Term: strings.TrimSpace(fields[1]),
				Score: strings.TrimSpace(fields[2]), Status: strings.TrimSpace(fields[3]),
			})
		}
	}
	return rec, nil
}

func labelledValue(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, ":")
	if !ok || strings.Contains(key, flatfile.Delimiter) {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

// EncodeConversationBlock renders one conversation turn. Line breaks in the question are
// flattened; the answer keeps its lines as continuation lines.
func EncodeConversationBlock(turn models.ConversationTurn) string {
	question := strings.Join(strings.Fields(sanitizeConversationText(turn.Question)), " ")
	answer := strings.TrimSpace(sanitizeConversationText(turn.Answer))

	var b strings.Builder
	fmt.Fprintf(&b, "[RA:%s|DATA:%s]\n", turn.RegistrationID, turn.Timestamp)
	b.WriteString(questionPrefix + question + "\n")
	b.WriteString(answerPrefix + answer + "\n")
	b.WriteString(ConversationEndMarker + "\n\n")
	return b.String()
}

func sanitizeConversationText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, ConversationEndMarker, "(FIM_CONVERSA)")
}

// DecodeConversationBlock parses a chunk split on the end marker. Ownership is read from the
// header line only; it reports false when the header names another student or the chunk is
// too short to hold a turn.
func DecodeConversationBlock(block, ra string) (*models.ConversationTurn, bool) {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	if len(lines) < 3 || !strings.HasPrefix(strings.TrimSpace(lines[0]), ConversationOwnerMarker(ra)) {
		return nil, false
	}

	date := unknownDate
	if _, after, ok := strings.Cut(lines[0], "DATA:"); ok {
		date = strings.TrimRight(strings.TrimSpace(after), "]")
	}
	question := strings.TrimSpace(strings.Replace(lines[1], questionPrefix, "", 1))

	answerLines := make([]string, 0, len(lines)-2)
	for _, l := range lines[2:] {
		if strings.TrimSpace(l) == "" || isConversationMarker(l) {
			continue
		}
		if strings.HasPrefix(l, "RESPOSTA:") {
			l = strings.TrimPrefix(strings.TrimPrefix(l, "RESPOSTA:"), " ")
		}
		answerLines = append(answerLines, l)
	}

	return &models.ConversationTurn{
		RegistrationID: ra,
		Timestamp:      date,
		Question:       question,
		Answer:         strings.TrimSpace(strings.Join(answerLines, "\n")),
	}, true
}

// isConversationMarker reports header and end-marker lines. Other bracketed lines, such as
// layout tags in raw model answers, are answer content.
func isConversationMarker(line string) bool {
	line = strings.TrimSpace(line)
	if line == ConversationEndMarker {
		return true
	}
	return strings.HasPrefix(line, "[RA:") && strings.Contains(line, "|DATA:") && strings.HasSuffix(line, "]")
}
