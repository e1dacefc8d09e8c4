package completion

import (
	"strings"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// Missing describe qué le falta a un documento para estar completo.
type Missing struct {
	Fields   []string
	Evidence []string
	Lines    bool // el predicado de partidas no se cumple
}

// Empty indica que no falta nada.
func (m Missing) Empty() bool {
	return len(m.Fields) == 0 && len(m.Evidence) == 0 && !m.Lines
}

// Evaluator decide si un documento está completo. Es puro: solo lee el estado
// ya cargado del documento (incluidas las ubicaciones hidratadas) y la lista fija de exenciones.
type Evaluator struct {
	rules  map[entity.DocumentKind]Rule
	exempt map[string]bool
}

// NewEvaluator construye el evaluador. Sin reglas explícitas usa DefaultRules.
// exemptLocationIDs se suma a la bandera EvidenceExempt de cada ubicación.
func NewEvaluator(exemptLocationIDs []string, rules ...Rule) *Evaluator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	e := &Evaluator{
		rules:  make(map[entity.DocumentKind]Rule, len(rules)),
		exempt: make(map[string]bool, len(exemptLocationIDs)),
	}
	for _, r := range rules {
		e.rules[r.Kind()] = r
	}
	for _, id := range exemptLocationIDs {
		if id = strings.TrimSpace(id); id != "" {
			e.exempt[id] = true
		}
	}
	return e
}

// Rule devuelve la regla del tipo indicado.
func (e *Evaluator) Rule(kind entity.DocumentKind) (Rule, bool) {
	r, ok := e.rules[kind]
	return r, ok
}

// IsExempt indica si la ubicación está dispensada de evidencias.
func (e *Evaluator) IsExempt(loc *entity.Location) bool {
	if loc == nil {
		return false
	}
	return loc.EvidenceExempt || e.exempt[loc.ID]
}

// IsComplete devuelve false para documentos sin identidad persistida o de tipo desconocido.
func (e *Evaluator) IsComplete(doc *entity.Document) bool {
	if !doc.IsPersisted() {
		return false
	}
	if _, ok := e.rules[doc.Kind]; !ok {
		return false
	}
	return e.Missing(doc).Empty()
}

// Missing enumera escalares, evidencias y la condición de partidas que no se cumplen.
func (e *Evaluator) Missing(doc *entity.Document) Missing {
	var m Missing
	r, ok := e.rules[doc.Kind]
	if !ok {
		return m
	}
	for _, f := range r.RequiredFields() {
		if strings.TrimSpace(doc.Field(f)) == "" {
			m.Fields = append(m.Fields, f)
		}
	}
	if !e.IsExempt(r.EvidenceCounterparty(doc)) {
		for _, slot := range r.RequiredEvidence() {
			if !doc.HasEvidence(slot) {
				m.Evidence = append(m.Evidence, slot)
			}
		}
	}
	m.Lines = !r.LinesSatisfied(doc.Lines)
	return m
}
