package graph

// Kind is the class of a graph node.
type Kind int

// Node kinds.
const (
	KindNode Kind = iota
	KindRegion
	KindCountry
	KindZone
	KindEquity
	KindSector
	KindIndustry
	KindCompany
	KindFX
)

var kindNames = [...]string{
	KindNode:     "Node",
	KindRegion:   "Region",
	KindCountry:  "Country",
	KindZone:     "Zone",
	KindEquity:   "Equity",
	KindSector:   "Sector",
	KindIndustry: "Industry",
	KindCompany:  "Company",
	KindFX:       "FX",
}

// String returns the kind name, which is also its colour scale domain
// value.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Node"
	}
	return kindNames[k]
}

// Column names of node and relationship rows.
const (
	ColNode      = "Node"
	ColLabel     = "Label"
	ColType      = "Type"
	ColSubType   = "SubType"
	ColLongitude = "Longitude"
	ColLatitude  = "Latitude"
	ColCountry   = "Of_Country"
	ColRegion    = "Of_Region"
	ColCurrency  = "Of_Currency"
	ColSector    = "Sector"
	ColIndustry  = "Industry"
	ColSize      = "size"

	ColStart    = "start_node"
	ColEnd      = "end_node"
	ColLinkType = "type"
)

// RootID is the synthetic root of tree views.
const RootID = "ALL"

// Row is one record of node or relationship data keyed by column name.
type Row map[string]string

// DefaultClassification maps Type + "_" + SubType to a node kind.
func DefaultClassification() map[string]Kind {
	return map[string]Kind{
		"GEO_REG":        KindRegion,
		"GEO_CTY":        KindCountry,
		"Equity_STY":     KindCompany,
		"Equity_CTY-SEC": KindSector,
		"Equity_CTY-IND": KindIndustry,
		"Equity_CTY":     KindEquity,
		"FX_EM":          KindFX,
		"FX_DM":          KindFX,
		"Equity_SEC":     KindSector,
		"Equity_IND":     KindIndustry,
		"GEO_CUZ":        KindNode,
	}
}

// Classify returns the kind of a node row under classes, or
// *UnknownNodeTypeError when its type key is not classified.
func Classify(r Row, classes map[string]Kind) (Kind, error) {
	key := typeKey(r)
	k, ok := classes[key]
	if !ok {
		return KindNode, &UnknownNodeTypeError{Node: r[ColNode], Key: key}
	}
	return k, nil
}

// typeKey returns the classification key of a node row.
func typeKey(r Row) string {
	return r[ColType] + "_" + r[ColSubType]
}

// parentOf returns the parent id a node of kind k derives from its row.
func parentOf(k Kind, r Row) string {
	switch k {
	case KindRegion:
		return RootID
	case KindCountry:
		return r[ColRegion]
	case KindZone:
		return r[ColCurrency]
	case KindEquity, KindFX:
		return r[ColCountry]
	case KindSector:
		return r[ColCountry] + "EQ"
	case KindIndustry:
		return r[ColCountry] + r[ColSector] + "EQ"
	case KindCompany:
		return r[ColCountry] + r[ColIndustry] + "EQ"
	default:
		return ""
	}
}

// startsVisible reports the initial visibility of a node of kind k.
func startsVisible(k Kind) bool {
	switch k {
	case KindNode, KindRegion, KindCountry:
		return true
	default:
		return false
	}
}
