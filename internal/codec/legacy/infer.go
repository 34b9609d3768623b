package legacy

import "github.com/hargabyte/erd/internal/model"

// RelType is a legacy relationship set tag, inferred from cardinality data
// at encode time; the dialect never stores it explicitly.
type RelType string

// Relationship set tags.
const (
	RelOneToOne            RelType = "RelationshipSetOneToOne"
	RelOneToN              RelType = "RelationshipSetOneToN"
	RelNToN                RelType = "RelationshipSetNToN"
	IdentifyingRelOneToOne RelType = "IdentifyingRelationshipSetOneToOne"
	IdentifyingRelOneToN   RelType = "IdentifyingRelationshipSetOneToN"
)

// InferRelType classifies a relationship for the legacy dialect:
//
//   - exactly 2 branches, both cardinality "1": OneToOne, or the Identifying
//     variant when any branch has total participation;
//   - exactly 2 branches, one "1" and one "N"/"M": OneToN, with the same
//     Identifying upgrade;
//   - everything else (n-ary, N:N, mixed): NToN. The dialect has no
//     identifying variant of NToN, so total participation is dropped in this
//     branch. That loss is an accepted property of the format, not something
//     to repair here.
func InferRelType(r *model.Relationship) RelType {
	oneCount := 0
	nCount := 0
	anyTotal := false
	for _, id := range r.EntityIDs {
		switch r.Cardinalities[id] {
		case model.CardinalityOne:
			oneCount++
		case model.CardinalityN, model.CardinalityM:
			nCount++
		}
		if r.Participations[id] == model.ParticipationTotal {
			anyTotal = true
		}
	}

	switch {
	case len(r.EntityIDs) == 2 && oneCount == 2:
		if anyTotal {
			return IdentifyingRelOneToOne
		}
		return RelOneToOne
	case len(r.EntityIDs) == 2 && oneCount == 1 && nCount == 1:
		if anyTotal {
			return IdentifyingRelOneToN
		}
		return RelOneToN
	default:
		return RelNToN
	}
}

// isIdentifying reports whether a tag carries total participation.
func (t RelType) isIdentifying() bool {
	return t == IdentifyingRelOneToOne || t == IdentifyingRelOneToN
}
