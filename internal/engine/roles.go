package engine

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Role is the semantic meaning assigned to a column.
type Role int

const (
	RoleIdentifier Role = iota
	RoleCost
	RoleBrand
	RoleCasePack
	RoleProductName
)

// roleTokenGroups lists, per role, the header tokens that indicate it.
// Groups are ordered most-specific first; a normalized header label matches
// a group when it contains any of the group's tokens as a substring. These
// tables are process-wide constants.
var roleTokenGroups = map[Role][][]string{
	RoleIdentifier: {
		{"asin"},
		{"upc"},
		{"ean"},
		{"barcode"},
		{"product_id", "productid"},
		{"item_id", "itemid"},
		{"gtin"},
	},
	RoleCost: {
		{"unit_cost", "unitcost"},
		{"price_per_unit", "priceperunit"},
		{"buy_price", "buyprice"},
		{"wholesale"},
		{"case_cost", "casecost"},
		{"cost"},
	},
	RoleBrand: {
		{"brand"},
		{"manufacturer", "mfr", "mfg"},
		{"vendor"},
		{"supplier"},
	},
	RoleCasePack: {
		{"case_pack", "casepack"},
	},
	RoleProductName: {
		{"product_name", "productname"},
		{"item_name", "itemname"},
		{"title"},
		{"description", "desc"},
		{"name"},
	},
}

// caseCostTokens mark cost columns whose values are per case, not per unit.
var caseCostTokens = []string{"case_cost", "casecost"}

// columnRef points a role at a concrete column.
type columnRef struct {
	col   int
	label string
}

// roleAssignment is the resolved column layout for one sheet. Identifier and
// cost keep their full ranked candidate lists; per row, the first candidate
// that yields a usable value wins. The fromTokens flags record whether the
// statistical fallback may still fill the optional roles.
type roleAssignment struct {
	identifier  []columnRef
	cost        []columnRef
	brand       *columnRef
	casePack    *columnRef
	productName *columnRef

	casePackFromTokens    bool
	productNameFromTokens bool
}

// tokenMatchesRole reports whether one normalized token indicates the role.
func tokenMatchesRole(token string, role Role) bool {
	for _, group := range roleTokenGroups[role] {
		for _, t := range group {
			if strings.Contains(token, t) {
				return true
			}
		}
	}
	return false
}

func anyTokenMatches(tokens []string, role Role) bool {
	for _, tok := range tokens {
		if tokenMatchesRole(tok, role) {
			return true
		}
	}
	return false
}

// isCaseCostLabel reports whether a cost column is denominated per case.
func isCaseCostLabel(label string) bool {
	tok := NormalizeHeaderToken(label)
	for _, t := range caseCostTokens {
		if strings.Contains(tok, t) {
			return true
		}
	}
	return false
}

// rankCandidates walks a role's token groups most-specific first and, within
// each group, the header labels in column order, collecting every matching
// label once. The result is the role's ranked candidate list.
func rankCandidates(labels []string, role Role) []columnRef {
	var out []columnRef
	taken := make(map[int]bool)

	for _, group := range roleTokenGroups[role] {
		for col, label := range labels {
			if taken[col] {
				continue
			}
			tok := NormalizeHeaderToken(label)
			for _, t := range group {
				if strings.Contains(tok, t) {
					out = append(out, columnRef{col: col, label: label})
					taken[col] = true
					break
				}
			}
		}
	}
	return out
}

// classifyByTokens assigns roles from header labels alone. It always returns
// the partial assignment it built so the statistical fallback can keep any
// roles that did resolve; the error reports which required role is missing.
func classifyByTokens(labels []string) (*roleAssignment, error) {
	asg := &roleAssignment{
		identifier: rankCandidates(labels, RoleIdentifier),
		cost:       rankCandidates(labels, RoleCost),
	}

	if brands := rankCandidates(labels, RoleBrand); len(brands) > 0 {
		asg.brand = &brands[0]
	}
	if packs := rankCandidates(labels, RoleCasePack); len(packs) > 0 {
		asg.casePack = &packs[0]
		asg.casePackFromTokens = true
	}

	// A label like "Product ID" contains "product" but is not a name
	// column; anything claimed by another role is excluded here.
	for _, cand := range rankCandidates(labels, RoleProductName) {
		tok := NormalizeHeaderToken(cand.label)
		if tokenMatchesRole(tok, RoleIdentifier) ||
			tokenMatchesRole(tok, RoleCost) ||
			tokenMatchesRole(tok, RoleBrand) ||
			tokenMatchesRole(tok, RoleCasePack) {
			continue
		}
		asg.productName = &cand
		asg.productNameFromTokens = true
		break
	}

	if len(asg.identifier) == 0 && asg.productName == nil {
		return asg, eris.Wrap(ErrNoIdentifierOrNameColumn, "engine: token classification")
	}
	if len(asg.cost) == 0 {
		return asg, eris.Wrap(ErrNoCostColumn, "engine: token classification")
	}
	return asg, nil
}
