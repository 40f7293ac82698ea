package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	domainerrors "re-view.backend/internal/domain/errors"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeTerm builds a lower-cased substring pattern for LIKE ... ESCAPE '\'
func likeTerm(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// anyTermLike matches column against any of the words, case-insensitively
func anyTermLike(q *gorm.DB, column string, terms []string) *gorm.DB {
	var (
		parts []string
		args  []interface{}
	)
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column))
		args = append(args, likeTerm(term))
	}
	if len(parts) == 0 {
		return q.Where("1 = 0")
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// sortOrder is one listing order: a column plus the id tie-break
type sortOrder struct {
	table  string
	column string
	desc   bool
}

func (o sortOrder) clause() string {
	dir := "ASC"
	if o.desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%[1]s.%[2]s %[3]s, %[1]s.id %[3]s", o.table, o.column, dir)
}

// from keeps rows at or after the cursor row in this order
func (o sortOrder) from(q *gorm.DB, cursor uuid.UUID) *gorm.DB {
	op, tie := ">", ">="
	if o.desc {
		op, tie = "<", "<="
	}
	pivot := fmt.Sprintf("(SELECT c.%s FROM %s c WHERE c.id = ?)", o.column, o.table)
	cond := fmt.Sprintf("(%[1]s.%[2]s %[3]s %[4]s OR (%[1]s.%[2]s = %[4]s AND %[1]s.id %[5]s ?))",
		o.table, o.column, op, pivot, tie)
	return q.Where(cond, cursor, cursor, cursor)
}

// paginate applies the cursor and limit+1 to a filtered query. filtered must
// return a fresh query each call. A cursor outside the filtered set is
// rejected with ErrInvalidCursor.
func paginate(filtered func() *gorm.DB, order sortOrder, cursor *uuid.UUID, limit int) (*gorm.DB, error) {
	q := filtered()
	if cursor != nil {
		var n int64
		if err := filtered().Where(order.table+".id = ?", *cursor).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, domainerrors.ErrInvalidCursor
		}
		q = order.from(q, *cursor)
	}
	return q.Order(order.clause()).Limit(limit + 1), nil
}

const (
	lockForUpdate = "UPDATE"
	lockForShare  = "SHARE"
)

// withRowLock adds SELECT ... FOR <strength>. sqlite has no row locks; its
// writers are already serialized on the database file.
func withRowLock(db *gorm.DB, strength string) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: strength})
}

func mapWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", domainerrors.ErrAlreadyExists, err)
	}
	return err
}
