package services

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// likeEscape follows every LIKE built from likePattern
const likeEscape = " ESCAPE '!'"

// Predicate is one named, parameterised condition on the order listing.
// SQL may reference the aliases o (orders) and c (customers).
type Predicate struct {
	Name string
	SQL  string
	Args []interface{}
}

// CustomerIs keeps orders placed by one customer
func CustomerIs(id uint) Predicate {
	return Predicate{Name: "customer", SQL: "o.customer_id = ?", Args: []interface{}{id}}
}

// PlacedOnOrAfter keeps orders placed on day or later
func PlacedOnOrAfter(day time.Time) Predicate {
	return Predicate{Name: "date_from", SQL: "o.order_date >= ?", Args: []interface{}{startOfDay(day)}}
}

// PlacedOnOrBefore keeps orders placed on day or earlier, the whole day included
func PlacedOnOrBefore(day time.Time) Predicate {
	return Predicate{Name: "date_to", SQL: "o.order_date < ?", Args: []interface{}{startOfDay(day).AddDate(0, 0, 1)}}
}

// TextMatches keeps orders whose code, customer name or any product name
// contains term, ignoring case
func TextMatches(term string) Predicate {
	like := likePattern(term)
	return Predicate{
		Name: "text",
		SQL: "(LOWER(o.code) LIKE ?" + likeEscape + " OR LOWER(c.full_name) LIKE ?" + likeEscape + " OR EXISTS (" +
			"SELECT 1 FROM order_items oi JOIN products p ON p.id = oi.product_id " +
			"WHERE oi.order_id = o.id AND LOWER(p.name) LIKE ?" + likeEscape + "))",
		Args: []interface{}{like, like, like},
	}
}

// CodeOrCustomerMatches is the narrower quick search over code and customer name
func CodeOrCustomerMatches(term string) Predicate {
	like := likePattern(term)
	return Predicate{
		Name: "quick",
		SQL:  "(LOWER(o.code) LIKE ?" + likeEscape + " OR LOWER(c.full_name) LIKE ?" + likeEscape + ")",
		Args: []interface{}{like, like},
	}
}

// ApplyPredicates ANDs every predicate onto db
func ApplyPredicates(db *gorm.DB, preds []Predicate) *gorm.DB {
	for _, p := range preds {
		db = db.Where(p.SQL, p.Args...)
	}
	return db
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern is a lower-cased substring pattern in which % and _ from the
// term match only themselves
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// OrderFilter holds the optional listing filters. Zero values mean "any".
type OrderFilter struct {
	CustomerID uint
	From       *time.Time
	To         *time.Time
	Text       string
}

// Predicates converts the filter to its predicate list
func (f OrderFilter) Predicates() []Predicate {
	var preds []Predicate
	if f.CustomerID != 0 {
		preds = append(preds, CustomerIs(f.CustomerID))
	}
	if f.From != nil {
		preds = append(preds, PlacedOnOrAfter(*f.From))
	}
	if f.To != nil {
		preds = append(preds, PlacedOnOrBefore(*f.To))
	}
	if f.Text != "" {
		preds = append(preds, TextMatches(f.Text))
	}
	return preds
}

// ParseOrderFilter reads raw query values. Blank values are ignored,
// malformed ones are validation errors.
func ParseOrderFilter(customerID, startDate, endDate, search string) (OrderFilter, error) {
	var f OrderFilter

	if v := strings.TrimSpace(customerID); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return f, invalidf("customer_id %q is not a valid id", customerID)
		}
		f.CustomerID = uint(id)
	}
	if v := strings.TrimSpace(startDate); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return f, invalidf("start_date %q must look like YYYY-MM-DD", startDate)
		}
		f.From = &t
	}
	if v := strings.TrimSpace(endDate); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return f, invalidf("end_date %q must look like YYYY-MM-DD", endDate)
		}
		f.To = &t
	}
	f.Text = strings.TrimSpace(search)
	return f, nil
}
