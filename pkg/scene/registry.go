package scene

import (
	"fmt"
	"sort"
	"strings"
)

// Info describes a built-in scene
type Info struct {
	ID          string
	DisplayName string
	Description string
	build       func() (*Scene, error)
}

var builtinScenes = []Info{
	{ID: "cornell", Description: "Cornell box with a short white box, a tall gold box and an area light", build: NewCornellScene},
	{ID: "emissive-plane", Description: "A unit-radiance plane filling the view", build: NewEmissivePlaneScene},
	{ID: "empty", Description: "Nothing at all; renders black", build: NewEmptyScene},
	{ID: "spheres", Description: "Spheres and a triangle-mesh pyramid under a spherical light", build: NewSpheresScene},
}

// DefaultScene is the scene rendered when none is named
const DefaultScene = "cornell"

// List returns the built-in scenes ordered by ID
func List() []Info {
	scenes := make([]Info, len(builtinScenes))
	for i, info := range builtinScenes {
		info.DisplayName = titleCase(info.ID)
		scenes[i] = info
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes
}

// Build constructs the built-in scene with the given ID
func Build(id string) (*Scene, error) {
	for _, info := range builtinScenes {
		if info.ID == id {
			return info.build()
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// titleCase converts an ID like "emissive-plane" to "Emissive Plane"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
