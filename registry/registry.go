// Package registry operates the global registry of sensor models.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/motionsensors/components/board"
	"go.viam.com/motionsensors/components/movementsensor"
	"go.viam.com/motionsensors/config"
	"go.viam.com/motionsensors/logging"
	"go.viam.com/motionsensors/utils"
)

// A Registration describes how to build a model from its converted attributes of type ConfT.
type Registration[ConfT any] struct {
	Constructor func(
		ctx context.Context,
		b board.Board,
		name string,
		conf ConfT,
		logger logging.Logger,
	) (movementsensor.Sensor, error)
}

type component struct {
	convert   func(attributes config.AttributeMap) (interface{}, error)
	construct func(
		ctx context.Context,
		b board.Board,
		conf config.Component,
		logger logging.Logger,
	) (movementsensor.Sensor, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]component{}
)

// RegisterComponent registers a model. Registering the same model twice panics.
func RegisterComponent[ConfT any](model string, reg Registration[ConfT]) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, old := registry[model]; old {
		panic(errors.Errorf("trying to register two components with same model %s", model))
	}
	if reg.Constructor == nil {
		panic(errors.Errorf("cannot register a nil constructor for model %s", model))
	}
	registry[model] = component{
		convert: func(attributes config.AttributeMap) (interface{}, error) {
			return config.TransformAttributeMap[ConfT](attributes)
		},
		construct: func(
			ctx context.Context,
			b board.Board,
			conf config.Component,
			logger logging.Logger,
		) (movementsensor.Sensor, error) {
			converted, ok := conf.ConvertedAttributes.(ConfT)
			if !ok {
				return nil, utils.NewUnexpectedTypeError(converted, conf.ConvertedAttributes)
			}
			return reg.Constructor(ctx, b, conf.Name, converted, logger)
		},
	}
}

// RegisteredModels returns the names of every registered model, sorted.
func RegisteredModels() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	models := make([]string, 0, len(registry))
	for model := range registry {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

func lookup(model string) (component, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	reg, ok := registry[model]
	if !ok {
		return component{}, errors.Errorf("unknown model %q", model)
	}
	return reg, nil
}

// ConvertAttributes converts and validates the attributes of every component in cfg, storing the
// result in ConvertedAttributes.
func ConvertAttributes(cfg *config.Config) error {
	for idx := range cfg.Components {
		comp := &cfg.Components[idx]
		reg, err := lookup(comp.Model)
		if err != nil {
			return errors.Wrapf(err, "component %q", comp.Name)
		}
		converted, err := reg.convert(comp.Attributes)
		if err != nil {
			return errors.Wrapf(err, "component %q", comp.Name)
		}
		comp.ConvertedAttributes = converted
		if err := comp.Validate(comp.Name); err != nil {
			return err
		}
	}
	return nil
}

// NewComponent builds the sensor described by conf. Its attributes must already be converted.
func NewComponent(
	ctx context.Context,
	b board.Board,
	conf config.Component,
	logger logging.Logger,
) (movementsensor.Sensor, error) {
	reg, err := lookup(conf.Model)
	if err != nil {
		return nil, err
	}
	return reg.construct(ctx, b, conf, logger.Sublogger(conf.Name))
}
