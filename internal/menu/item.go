package menu

import "strings"

// Kind tags the variants of an ItemID
type Kind int

const (
	KindUnknown Kind = iota
	KindRoot
	KindManage
	KindAddCurrentPage
	KindSeparator
	KindBranch      // structural parent of per-environment leaves
	KindTemplate    // leaf without environment
	KindTemplateEnv // leaf bound to one environment
)

// Encoded identities of the fixed nodes
const (
	RootID           = "customSearchParent"
	ManageID         = "manage"
	AddCurrentPageID = "addCurrentPage"
	SeparatorID      = "separator"

	branchPrefix  = "branch:"
	leafSeparator = "|"

	// NoEnvironment is the environment slot of a leaf that has no environment
	NoEnvironment = "-"
)

// ItemID is the decoded identity of a menu node.
// TemplateID is set for branches and leaves, EnvironmentID only for KindTemplateEnv.
type ItemID struct {
	Kind          Kind
	TemplateID    string
	EnvironmentID string
}

// Branch builds the identity of a template's intermediate node
func Branch(templateID string) ItemID {
	return ItemID{Kind: KindBranch, TemplateID: templateID}
}

// TemplateLeaf builds the identity of a leaf with no environment
func TemplateLeaf(templateID string) ItemID {
	return ItemID{Kind: KindTemplate, TemplateID: templateID}
}

// TemplateEnvLeaf builds the identity of a leaf bound to an environment
func TemplateEnvLeaf(templateID, environmentID string) ItemID {
	return ItemID{Kind: KindTemplateEnv, TemplateID: templateID, EnvironmentID: environmentID}
}

// String encodes the identity for the menu host
func (id ItemID) String() string {
	switch id.Kind {
	case KindRoot:
		return RootID
	case KindManage:
		return ManageID
	case KindAddCurrentPage:
		return AddCurrentPageID
	case KindSeparator:
		return SeparatorID
	case KindBranch:
		return branchPrefix + id.TemplateID
	case KindTemplate:
		return id.TemplateID + leafSeparator + NoEnvironment
	case KindTemplateEnv:
		return id.TemplateID + leafSeparator + id.EnvironmentID
	}
	return ""
}

// IsLeaf reports whether activating this identity resolves a template
func (id ItemID) IsLeaf() bool {
	return id.Kind == KindTemplate || id.Kind == KindTemplateEnv
}

// Parse decodes an identity delivered by the menu host.
// Anything that is not a known shape decodes to KindUnknown.
func Parse(s string) ItemID {
	switch s {
	case "":
		return ItemID{Kind: KindUnknown}
	case RootID:
		return ItemID{Kind: KindRoot}
	case ManageID:
		return ItemID{Kind: KindManage}
	case AddCurrentPageID:
		return ItemID{Kind: KindAddCurrentPage}
	case SeparatorID:
		return ItemID{Kind: KindSeparator}
	}

	if strings.HasPrefix(s, branchPrefix) {
		templateID := strings.TrimPrefix(s, branchPrefix)
		if templateID == "" {
			return ItemID{Kind: KindUnknown}
		}
		return Branch(templateID)
	}

	// Leaves are <templateID>|<environmentID or ->. Environment ids never
	// contain the separator, so the last one splits.
	i := strings.LastIndex(s, leafSeparator)
	if i < 0 {
		return ItemID{Kind: KindUnknown}
	}
	templateID, envID := s[:i], s[i+len(leafSeparator):]
	if templateID == "" || envID == "" {
		return ItemID{Kind: KindUnknown}
	}
	if envID == NoEnvironment {
		return TemplateLeaf(templateID)
	}
	return TemplateEnvLeaf(templateID, envID)
}

// ValidTemplateID reports whether a template id survives encoding into
// branch and leaf identities
func ValidTemplateID(id string) bool {
	return id != "" && !strings.HasPrefix(id, branchPrefix)
}

// ValidEnvironmentID reports whether an environment id survives encoding
// into a leaf identity
func ValidEnvironmentID(id string) bool {
	return id != "" && id != NoEnvironment && !strings.Contains(id, leafSeparator)
}
