package models

// DefaultGroup is the group assignment of a freshly seeded student.
const DefaultGroup = "Não atribuído"

// GradeEntry is one assessment score within a cycle.
type GradeEntry struct {
	Cycle      string `json:"ciclo"`
	Assessment string `json:"avaliacao"`
	Score      string `json:"nota"`
}

// CourseHistoryEntry is one course line of the academic history.
type CourseHistoryEntry struct {
	Course string `json:"disciplina"`
	Term   string `json:"periodo"`
	Score  string `json:"nota"`
	Status string `json:"situacao"`
}

// StudentRecord is the per-student academic data injected into prompts. The application
// only ever seeds it; later edits happen by hand in the data file.
type StudentRecord struct {
	RegistrationID string               `json:"ra"`
	Name           string               `json:"nome"`
	Program        string               `json:"curso"`
	Group          string               `json:"grupo"`
	Grades         []GradeEntry         `json:"notas"`
	History        []CourseHistoryEntry `json:"historico"`
}

// NewDefaultStudentRecord builds the record seeded at registration time.
func NewDefaultStudentRecord(ra, name, program string) StudentRecord {
	return StudentRecord{
		RegistrationID: ra,
		Name:           name,
		Program:        program,
		Group:          DefaultGroup,
		Grades: []GradeEntry{
			{Cycle: "Ciclo 1", Assessment: "AFE - Avaliação Final de entrega", Score: "0.00"},
			{Cycle: "Ciclo 1", Assessment: "VRAU - Verificação Regular", Score: "0.00"},
			{Cycle: "Ciclo 1", Assessment: "PI - Projeto Integrador", Score: "0.00"},
			{Cycle: "Ciclo 1", Assessment: "Avaliação 360°", Score: "0.00"},
		},
		History: []CourseHistoryEntry{
			{Course: "Cidadania ética e espiritualidade", Term: "1", Score: "0.0", Status: "Cursando"},
			{Course: "Introdução a engenharia de soluções", Term: "1", Score: "0.0", Status: "Cursando"},
			{Course: "Fundamentos matemáticos para computação", Term: "1", Score: "0.0", Status: "Cursando"},
			{Course: "Fundamentos de computação e infraestrutura", Term: "1", Score: "0.0", Status: "Cursando"},
			{Course: "Fundamentos de engenharia de dados", Term: "1", Score: "0.0", Status: "Cursando"},
		},
	}
}
