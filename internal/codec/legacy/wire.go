// Package legacy implements the desktop-application XML dialect, root
// <ERDatabaseModel>. The dialect differs from the canonical model in every
// structural convention: numeric incrementing ids instead of opaque strings,
// center-based integer coordinates instead of top-left floats, a split
// logical (ERDatabaseSchema) / visual (ERDatabaseDiagram) section layout, and
// relationship types encoded in the element tag rather than stored
// explicitly. Encode and Decode keep the whole quirk set local to this
// package.
package legacy

import "encoding/xml"

type xmlModel struct {
	XMLName xml.Name   `xml:"ERDatabaseModel"`
	Schema  xmlSchema  `xml:"ERDatabaseSchema"`
	Diagram xmlDiagram `xml:"ERDatabaseDiagram"`
}

type xmlSchema struct {
	LastID int `xml:"lastId,attr"`

	StrongEntitySets []xmlEntitySet `xml:"StrongEntitySet"`
	WeakEntitySets   []xmlEntitySet `xml:"WeakEntitySet"`

	// One field per inferred relationship tag. The dialect has no
	// identifying (total) variant of NToN.
	RelOneToOne         []xmlRelSet `xml:"RelationshipSetOneToOne"`
	RelOneToN           []xmlRelSet `xml:"RelationshipSetOneToN"`
	RelNToN             []xmlRelSet `xml:"RelationshipSetNToN"`
	IdentifyingOneToOne []xmlRelSet `xml:"IdentifyingRelationshipSetOneToOne"`
	IdentifyingOneToN   []xmlRelSet `xml:"IdentifyingRelationshipSetOneToN"`

	Generalizations      []xmlGenSet `xml:"Generalization"`
	TotalGeneralizations []xmlGenSet `xml:"TotalGeneralization"`
}

type xmlEntitySet struct {
	ID           int             `xml:"id,attr"`
	Name         string          `xml:"name,attr"`
	Attributes   []xmlSchemaAttr `xml:"Attributes>Attribute"`
	PrimaryKey   []xmlAttrRef    `xml:"PrimaryKey>AttributeRef"`
	Discriminant []xmlAttrRef    `xml:"Discriminant>AttributeRef"`
}

type xmlSchemaAttr struct {
	ID          int    `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	Multivalued bool   `xml:"multivalued,attr"`
	Derived     bool   `xml:"derived,attr"`
	Composite   bool   `xml:"composite,attr"`
}

type xmlAttrRef struct {
	ID int `xml:"id,attr"`
}

type xmlRelSet struct {
	ID         int             `xml:"id,attr"`
	Name       string          `xml:"name,attr"`
	Branches   []xmlBranch     `xml:"Branches>RelationshipSetBranch"`
	Attributes []xmlSchemaAttr `xml:"Attributes>Attribute"`
}

type xmlBranch struct {
	ID                 int    `xml:"id,attr"`
	EntitySetID        int    `xml:"entitySetId,attr"`
	Cardinality        string `xml:"cardinality,attr"`
	TotalParticipation bool   `xml:"totalParticipation,attr"`
}

type xmlGenSet struct {
	ID       int            `xml:"id,attr"`
	Parent   xmlEntityRef   `xml:"Parent"`
	Children []xmlEntityRef `xml:"Children>Child"`
}

type xmlEntityRef struct {
	EntitySetID int `xml:"entitySetId,attr"`
}

type xmlDiagram struct {
	Positions []xmlPosition `xml:"Position"`
}

// xmlPosition stores the center of a shape's bounding box, rounded to the
// nearest integer. The dialect has no sub-pixel layout.
type xmlPosition struct {
	RefID   int `xml:"refId,attr"`
	CenterX int `xml:"centerX,attr"`
	CenterY int `xml:"centerY,attr"`
}
