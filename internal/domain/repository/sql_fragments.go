package repository

import (
	"fmt"
	"strings"
)

// authorSelect expects the users/profiles join from authorJoin.
const authorSelect = `u.username AS author_username, pr.display_name AS author_display_name, pr.avatar_url AS author_avatar_url`

const replyToSelect = `ru.username AS reply_to_username, rpr.display_name AS reply_to_display_name, rpr.avatar_url AS reply_to_avatar_url`

func authorJoin(alias string) string {
	return fmt.Sprintf(` JOIN users u ON u.id = %[1]s.author_id LEFT JOIN profiles pr ON pr.user_id = u.id`, alias)
}

func replyToJoin(alias string) string {
	return fmt.Sprintf(` LEFT JOIN users ru ON ru.id = %[1]s.reply_to_user_id LEFT JOIN profiles rpr ON rpr.user_id = ru.id`, alias)
}

// whereBuilder accumulates ANDed conditions with positional args.
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

// add takes a condition with a single %d placeholder for the next arg index.
func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conditions = append(w.conditions, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) addRaw(cond string) {
	w.conditions = append(w.conditions, cond)
}

func (w *whereBuilder) clause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	out := " WHERE " + w.conditions[0]
	for _, c := range w.conditions[1:] {
		out += " AND " + c
	}
	return out
}

// next returns the placeholder index for an arg appended after the filters.
func (w *whereBuilder) next(offset int) int {
	return len(w.args) + offset
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches s literally anywhere in the column. ILIKE's default
// escape character is a backslash.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
