// Package spawn places blockades and the items that unlock them on a built
// maze. Placement depends only on the geometry, the seed and the asset lists.
package spawn

import (
	"github.com/arcade-cabinet/beppo-laughs/catalog"
	"github.com/arcade-cabinet/beppo-laughs/geometry"
	"github.com/arcade-cabinet/beppo-laughs/rng"
)

// DefaultSeed replaces an empty seed.
const DefaultSeed = "default"

const (
	saltBlockadeNodes    = "blockade-nodes"
	saltCollectibleNodes = "collectible-nodes"
	saltObstacles        = "obstacles"
	saltSolutions        = "solutions"

	nodesPerObstacle = 10
	itemIDPrefix     = "unlock-"
)

// Obstacle blocks a node until its required item is collected.
type Obstacle struct {
	Node             geometry.NodeID    `json:"-"`
	NodeKey          string             `json:"nodeId"`
	World            geometry.Point     `json:"world"`
	Asset            catalog.ImageAsset `json:"asset"`
	TextureURL       string             `json:"textureUrl"`
	RequiredItemID   string             `json:"requiredItemId"`
	RequiredItemName string             `json:"requiredItemName"`
}

// Collectible is the item that removes exactly one obstacle.
type Collectible struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Node        geometry.NodeID    `json:"-"`
	NodeKey     string             `json:"nodeId"`
	World       geometry.Point     `json:"world"`
	Asset       catalog.ImageAsset `json:"asset"`
	TextureURL  string             `json:"textureUrl"`
	UnlocksNode geometry.NodeID    `json:"-"`
	UnlocksKey  string             `json:"unlocksBlockadeId"`
}

// Plan pairs every obstacle with one collectible; Obstacles[i] is unlocked by
// Collectibles[i].
type Plan struct {
	Obstacles    []Obstacle    `json:"blockades"`
	Collectibles []Collectible `json:"collectibles"`
}

// NewPlan builds the placement for geo. It returns nil when either asset list
// is empty or when the maze has fewer than two nodes that are neither the
// center nor an exit. Two is the least that holds one obstacle and its item on
// different nodes; every maze of 3x3 or more has at least four such nodes.
func NewPlan(geo *geometry.Geometry, seed string, obstacles, items []catalog.ImageAsset) *Plan {
	if geo == nil || len(obstacles) == 0 || len(items) == 0 {
		return nil
	}
	if seed == "" {
		seed = DefaultSeed
	}

	eligible := eligibleNodes(geo)
	if len(eligible) < 2 {
		return nil
	}

	count := min(max(1, len(geo.Nodes)/nodesPerObstacle), len(eligible)-1)
	blockades := rng.Shuffle(eligible, seed, saltBlockadeNodes)[:count]

	taken := make(map[geometry.NodeID]bool, count)
	for _, id := range blockades {
		taken[id] = true
	}
	var free []geometry.NodeID
	for _, id := range eligible {
		if !taken[id] {
			free = append(free, id)
		}
	}
	free = rng.Shuffle(free, seed, saltCollectibleNodes)

	obstacleAssets := rng.Shuffle(obstacles, seed, saltObstacles)
	itemAssets := rng.Shuffle(items, seed, saltSolutions)

	p := &Plan{
		Obstacles:    make([]Obstacle, 0, count),
		Collectibles: make([]Collectible, 0, count),
	}
	for i, id := range blockades {
		node := geo.Nodes[id]
		item := itemAssets[i%len(itemAssets)]
		itemID := itemIDPrefix + node.Key
		itemName := catalog.FormatAssetLabel(item.ID)

		obstacle := obstacleAssets[i%len(obstacleAssets)]

		p.Obstacles = append(p.Obstacles, Obstacle{
			Node:             id,
			NodeKey:          node.Key,
			World:            node.World,
			Asset:            obstacle,
			TextureURL:       catalog.TextureURL(catalog.ImageBase, obstacle),
			RequiredItemID:   itemID,
			RequiredItemName: itemName,
		})

		spot := geo.Nodes[free[i%len(free)]]
		p.Collectibles = append(p.Collectibles, Collectible{
			ID:          itemID,
			Name:        itemName,
			Node:        spot.ID,
			NodeKey:     spot.Key,
			World:       spot.World,
			Asset:       item,
			TextureURL:  catalog.TextureURL(catalog.ImageBase, item),
			UnlocksNode: id,
			UnlocksKey:  node.Key,
		})
	}
	return p
}

func eligibleNodes(geo *geometry.Geometry) []geometry.NodeID {
	avoid := map[geometry.NodeID]bool{geo.Center: true}
	for _, e := range geo.Exits {
		avoid[e] = true
	}

	out := make([]geometry.NodeID, 0, len(geo.Nodes))
	for _, n := range geo.Nodes {
		if !avoid[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// ObstacleAt returns the obstacle standing on id.
func (p *Plan) ObstacleAt(id geometry.NodeID) (Obstacle, bool) {
	if p == nil {
		return Obstacle{}, false
	}
	for _, o := range p.Obstacles {
		if o.Node == id {
			return o, true
		}
	}
	return Obstacle{}, false
}

// CollectiblesAt returns the items lying on id. Several items share a node
// when there were fewer free nodes than obstacles.
func (p *Plan) CollectiblesAt(id geometry.NodeID) []Collectible {
	if p == nil {
		return nil
	}
	var out []Collectible
	for _, c := range p.Collectibles {
		if c.Node == id {
			out = append(out, c)
		}
	}
	return out
}
