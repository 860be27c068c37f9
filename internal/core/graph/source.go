package graph

import "github.com/custodia-labs/lattice/internal/core/domain"

// Source property keys.
const (
	propName    = "name"
	propType    = "type"
	propBaseURI = "base_uri"
)

// SourceNode wraps a Source for graph persistence.
type SourceNode struct {
	*domain.Source
}

// Label returns the node label.
func (SourceNode) Label() string { return LabelSource }

// NodeID returns the stable identifier merged on.
func (n SourceNode) NodeID() string { return n.ID }

// Props flattens the source into primitive properties.
func (n SourceNode) Props() (map[string]any, error) {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		propName:      n.Name,
		propType:      n.Type.String(),
		propBaseURI:   n.BaseURI,
		propMetadata:  meta,
		propCreatedAt: formatTime(n.CreatedAt),
		propUpdatedAt: formatTime(n.UpdatedAt),
	}, nil
}

// SourceFromProps restores a source from stored properties. Fields not
// recognised as source properties are preserved in the metadata map.
func SourceFromProps(props map[string]any) *domain.Source {
	return &domain.Source{
		ID:        stringProp(props, propID),
		Name:      stringProp(props, propName),
		Type:      domain.SourceType(stringProp(props, propType)),
		BaseURI:   stringProp(props, propBaseURI),
		Metadata:  restMetadata(props, propName, propType, propBaseURI),
		CreatedAt: parseTime(props[propCreatedAt]),
		UpdatedAt: parseTime(props[propUpdatedAt]),
	}
}
