package sqlstore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// identPattern matches the table and column names this store will
// interpolate into SQL. Values are always bound as parameters.
var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// dialect captures the syntax differences between the supported drivers.
type dialect struct {
	quote    string
	numbered bool
}

var (
	mysqlDialect    = dialect{quote: "`"}
	sqliteDialect   = dialect{quote: "`"}
	postgresDialect = dialect{quote: `"`, numbered: true}
)

func dialectFor(d domain.StoreDriver) dialect {
	switch d {
	case domain.StoreDriverPostgres:
		return postgresDialect
	case domain.StoreDriverSQLite:
		return sqliteDialect
	default:
		return mysqlDialect
	}
}

// ident validates and quotes a table or column name.
func (d dialect) ident(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("%w: identifier %q", domain.ErrInvalidInput, name)
	}
	return d.quote + name + d.quote, nil
}

// idents quotes every name, stopping at the first invalid one.
func (d dialect) idents(names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		q, err := d.ident(n)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}

// params returns n comma separated bind markers, numbered from first
// when the driver uses positional parameters.
func (d dialect) params(first, n int) string {
	marks := make([]string, n)
	for i := range marks {
		if d.numbered {
			marks[i] = "$" + strconv.Itoa(first+i)
		} else {
			marks[i] = "?"
		}
	}
	return strings.Join(marks, ", ")
}

// cellString renders a scanned value the same way for every driver.
// Timestamps use the "YYYY-MM-DD HH:MM:SS" form the event tables store.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.DateTime)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
