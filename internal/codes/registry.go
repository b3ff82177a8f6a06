// Package codes loads the enumerated code tables (policy status, payee status,
// residence state and the rest) and translates raw codes into display names.
//
// A Registry is immutable once loaded and safe for concurrent use.
package codes

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/reporterror"
	"fjacquet/payout-report/internal/xmlutils"

	"gopkg.in/xmlpath.v2"
)

//go:embed tables/*.xml
var embedded embed.FS

var (
	allowedValuePath = xmlpath.MustCompile("//allowedvalue")
	internalPath     = xmlpath.MustCompile("internal/@value")
	displayPath      = xmlpath.MustCompile("display/@value")
	externalPath     = xmlpath.MustCompile("external/display/@value")
)

// Registry holds one table per domain.
type Registry struct {
	tables map[Domain]map[string]string
}

// EmbeddedTables returns the definition resources compiled into the binary.
func EmbeddedTables() fs.FS {
	sub, err := fs.Sub(embedded, "tables")
	if err != nil {
		panic(err)
	}
	return sub
}

// Load reads every domain table from fsys. Tables load independently; if any
// fail, the returned error is a *reporterror.RegistryError naming all of them
// and the registry is nil.
func Load(fsys fs.FS, logger logging.Logger) (*Registry, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	reg := &Registry{tables: make(map[Domain]map[string]string, len(definitions))}
	failures := make(map[string]error)

	for _, def := range definitions {
		log := logger.WithFields(logging.F(logging.FieldDomain, def.Domain), logging.F(logging.FieldResource, def.File))
		table, err := loadTable(fsys, def, log)
		if err != nil {
			log.WithError(err).Error("Failed to load code table")
			failures[string(def.Domain)] = err
			continue
		}
		reg.tables[def.Domain] = table
		log.Debug("Loaded code table", logging.F(logging.FieldCount, len(table)))
	}

	if len(failures) > 0 {
		return nil, &reporterror.RegistryError{Failures: failures}
	}
	return reg, nil
}

func loadTable(fsys fs.FS, def definition, log logging.Logger) (map[string]string, error) {
	root, err := xmlutils.LoadXMLFile(fsys, def.File)
	if err != nil {
		return nil, err
	}

	iter := allowedValuePath.Iter(root)
	table := make(map[string]string)
	seen := 0
	for iter.Next() {
		seen++
		node := iter.Node()

		raw, ok := xmlutils.FirstValue(node, internalPath)
		if !ok {
			log.Warn("Allowed value without internal code, skipping")
			continue
		}
		key, ok := normalizeKey(def, raw)
		if !ok {
			log.Warn("Invalid number format in internal value, skipping", logging.F(logging.FieldCode, raw))
			continue
		}

		display, ok := xmlutils.FirstValue(node, displayPath, externalPath)
		if !ok || display == "" {
			log.Warn("Allowed value without display name, skipping", logging.F(logging.FieldCode, raw))
			continue
		}
		table[key] = display
	}

	if seen == 0 {
		return nil, errors.New("no allowed values defined")
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("none of %d allowed values could be read", seen)
	}
	return table, nil
}

func normalizeKey(def definition, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !def.IntKeyed {
		return raw, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

// Lookup returns the display name for raw in domain and whether it was found.
// Empty, non-numeric (for numeric domains) and undefined codes are not found.
func (r *Registry) Lookup(domain Domain, raw string) (string, bool) {
	if r == nil {
		return Unknown, false
	}
	def, ok := lookupDefinition(domain)
	if !ok {
		return Unknown, false
	}
	key, ok := normalizeKey(def, raw)
	if !ok {
		return Unknown, false
	}
	display, ok := r.tables[domain][key]
	if !ok {
		return Unknown, false
	}
	return display, true
}

// Translate returns the display name for raw, or Unknown.
func (r *Registry) Translate(domain Domain, raw string) string {
	display, _ := r.Lookup(domain, raw)
	return display
}

// TranslateCode is Translate for an integer code.
func (r *Registry) TranslateCode(domain Domain, code int64) string {
	return r.Translate(domain, strconv.FormatInt(code, 10))
}

// Entry is one code/display pair.
type Entry struct {
	Code    string `yaml:"code" json:"code"`
	Display string `yaml:"display" json:"display"`
}

// Table returns a copy of a domain's table sorted by code (numerically for
// numeric domains).
func (r *Registry) Table(domain Domain) []Entry {
	if r == nil {
		return nil
	}
	table := r.tables[domain]
	out := make([]Entry, 0, len(table))
	for code, display := range table {
		out = append(out, Entry{Code: code, Display: display})
	}

	def, _ := lookupDefinition(domain)
	sort.Slice(out, func(i, j int) bool {
		if def.IntKeyed {
			a, _ := strconv.ParseInt(out[i].Code, 10, 64)
			b, _ := strconv.ParseInt(out[j].Code, 10, 64)
			return a < b
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Size returns the number of codes loaded for domain.
func (r *Registry) Size(domain Domain) int {
	if r == nil {
		return 0
	}
	return len(r.tables[domain])
}
