// Package sqlxrepos implements the domain repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"strconv"
	"strings"

	"github.com/AcaDesk/acadesk-server/core"
)

// orderClause renders an ORDER BY suffix or "" when no ordering was given.
func orderClause(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return ""
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}

func like(keyword string) string {
	return "%" + keyword + "%"
}

func placeholderAt(n int) string {
	return "$" + strconv.Itoa(n)
}
