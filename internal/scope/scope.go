// Package scope builds caller-aware query predicates for entity listings.
//
// Every read path goes through a scope so the visibility rule is stated once
// per entity type instead of being repeated at each call site. A scope (or
// filter) compiles to a Clause: a SQL boolean expression plus its bind args,
// AND'd into the store's SELECT statements. Out-of-scope rows are simply not
// found; callers can't tell scope exclusion from true absence.
package scope

import (
	"strings"

	"github.com/taskhubapp/taskhub-server/internal/domain"
)

// Clause is a SQL boolean expression with its bind arguments.
type Clause struct {
	SQL  string
	Args []any
}

// All returns a clause that matches every row.
func All() Clause {
	return Clause{SQL: "1=1"}
}

// And combines clauses into a single conjunction.
// Empty clauses are skipped; combining nothing yields All.
func And(clauses ...Clause) Clause {
	parts := make([]string, 0, len(clauses))
	var args []any
	for _, c := range clauses {
		if c.SQL == "" {
			continue
		}
		parts = append(parts, c.SQL)
		args = append(args, c.Args...)
	}
	if len(parts) == 0 {
		return All()
	}
	return Clause{
		SQL:  strings.Join(parts, " AND "),
		Args: args,
	}
}

// Tasks returns the visibility scope for the given caller.
// Anonymous callers see public tasks only; authenticated callers additionally
// see their own tasks regardless of visibility. The same rule applies to
// listing and single-row reads.
func Tasks(caller *domain.User) Clause {
	if caller == nil {
		return Clause{
			SQL:  "tasks.visibility = ?",
			Args: []any{string(domain.VisibilityPublic)},
		}
	}
	return Clause{
		SQL:  "(tasks.visibility = ? OR tasks.user_id = ?)",
		Args: []any{string(domain.VisibilityPublic), caller.ID},
	}
}

// Tags returns the tag scope. Every tag is visible to everyone.
func Tags(_ *domain.User) Clause {
	return All()
}

// Users returns the user scope. User listings are unrestricted.
func Users(_ *domain.User) Clause {
	return All()
}

// TaskFilter holds the optional task listing parameters.
// Zero values mean "no filter"; each set field narrows the result further.
type TaskFilter struct {
	// Search matches tasks whose title or description contains any one of
	// the whitespace-separated words, case-insensitively.
	Search string
	// Tag restricts to tasks associated with a tag of this exact name.
	Tag string
	// Status restricts to tasks with this exact status value. Unknown values
	// match nothing; the filter is literal equality, not validation.
	Status string
}

// Clauses compiles the filter into predicate clauses, one per set field.
func (f TaskFilter) Clauses() []Clause {
	var clauses []Clause

	if words := strings.Fields(f.Search); len(words) > 0 {
		parts := make([]string, len(words))
		args := make([]any, 0, len(words)*2)
		for i, word := range words {
			parts[i] = "(tasks.title LIKE ? OR tasks.description LIKE ?)"
			pattern := "%" + word + "%"
			args = append(args, pattern, pattern)
		}
		clauses = append(clauses, Clause{
			SQL:  "(" + strings.Join(parts, " OR ") + ")",
			Args: args,
		})
	}

	if f.Tag != "" {
		clauses = append(clauses, Clause{
			SQL: `EXISTS (
				SELECT 1 FROM tag_task
				JOIN tags ON tags.id = tag_task.tag_id
				WHERE tag_task.task_id = tasks.id AND tags.name = ?
			)`,
			Args: []any{f.Tag},
		})
	}

	if f.Status != "" {
		clauses = append(clauses, Clause{
			SQL:  "tasks.status = ?",
			Args: []any{f.Status},
		})
	}

	return clauses
}
