package loam

import "github.com/aretw0/qtree/internal/dto"

// TreeMetadata is the frontmatter (or JSON/YAML body) of a tree document.
// It uses "mapstructure" tags to match the keys of tree files.
type TreeMetadata = dto.Document
