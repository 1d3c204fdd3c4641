// Package docs отдаёт описание API для swagger UI.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var doc string

type spec struct{}

func (spec) ReadDoc() string { return doc }

func init() {
	swag.Register(swag.Name, spec{})
}
