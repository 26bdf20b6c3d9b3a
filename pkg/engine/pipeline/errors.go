package pipeline

import "github.com/sourcebridge/sourcebridge/pkg/engine/model"

func notReversible(t Transformation) error {
	return &model.ValidationError{Message: "transformation \"" + t.Describe() + "\" is not reversible"}
}
