// plant.go defines the tree inventory models. Leafs and seeds are lookup
// tables referenced by trees.
package models

import "time"

// Leaf is a leaf variety referenced by trees.
type Leaf struct {
	ID          int64
	Name        string
	Type        string
	Age         string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Seed is a seed variety referenced by trees.
type Seed struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tree references one leaf and one seed variety. The foreign keys are checked
// at validate time and enforced by the schema.
type Tree struct {
	ID          int64
	Name        string
	Type        string
	LeafID      int64
	SeedID      int64
	Age         string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TreeWithNames is a tree joined with the names of its leaf and seed, as shown
// on the tree list screen.
type TreeWithNames struct {
	Tree
	LeafName string
	SeedName string
}
