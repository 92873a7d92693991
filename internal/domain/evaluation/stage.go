package evaluation

import "regexp"

var stageIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Stage is one fixed evaluation criterion applied to a manuscript.
type Stage struct {
	ID          string
	Name        string
	Description string
}

// Validate ensures the stage carries a stable identifier and a display name.
func (s Stage) Validate() error {
	if s.ID == "" {
		return newMissingFieldError("id")
	}
	if !stageIDPattern.MatchString(s.ID) {
		return newValidationError("stage id must match ^[a-z0-9][a-z0-9-]*$", map[string]interface{}{"stage_id": s.ID})
	}
	if s.Name == "" {
		return newMissingFieldError("name").WithContext(map[string]interface{}{"stage_id": s.ID})
	}
	return nil
}

// Catalog is the ordered list of stages. Order is evaluation order.
type Catalog []Stage

// DefaultCatalog returns the six manuscript evaluation stages.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ID:          "line-editing",
			Name:        "Line & Copy Editing",
			Description: "Grammar, syntax, clarity, and prose fluidity",
		},
		{
			ID:          "plot-evaluation",
			Name:        "Plot Evaluation",
			Description: "Story structure, pacing, narrative tension, and resolution",
		},
		{
			ID:          "character-evaluation",
			Name:        "Character Evaluation",
			Description: "Character depth, motivation, consistency, and emotional impact",
		},
		{
			ID:          "book-flow",
			Name:        "Book Flow Evaluation",
			Description: "Rhythm, transitions, escalation patterns, and narrative cohesion",
		},
		{
			ID:          "worldbuilding",
			Name:        "Worldbuilding & Setting",
			Description: "Depth, continuity, and immersive quality of the world",
		},
		{
			ID:          "overall-assessment",
			Name:        "Overall Assessment",
			Description: "Comprehensive evaluation and recommendations",
		},
	}
}

// Validate ensures the catalog is non-empty and every stage id is unique.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return newValidationError("catalog requires at least one stage", nil)
	}
	seen := make(map[string]struct{}, len(c))
	for _, stage := range c {
		if err := stage.Validate(); err != nil {
			return err
		}
		if _, ok := seen[stage.ID]; ok {
			return newDuplicateError(stage.ID)
		}
		seen[stage.ID] = struct{}{}
	}
	return nil
}

// Lookup retrieves a stage by identifier.
func (c Catalog) Lookup(id string) (Stage, error) {
	for _, stage := range c {
		if stage.ID == id {
			return stage, nil
		}
	}
	return Stage{}, newDomainError(ErrCodeNotFound, "stage not found", nil, map[string]interface{}{"stage_id": id})
}

// IDs returns the stage identifiers in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i, stage := range c {
		ids[i] = stage.ID
	}
	return ids
}

// Clone returns a copy that callers may modify freely.
func (c Catalog) Clone() Catalog {
	return append(Catalog(nil), c...)
}
