package core

import (
	"errors"
)

var (
	ErrUnknownAssetType           = errors.New("unknown asset type")
	ErrAssetDefinitionNotFound    = errors.New("asset definition not found")
	ErrSceneDefinitionNotFound    = errors.New("scene definition not found")
	ErrProjectDefinitionMissing   = errors.New("project definition missing")
	ErrInvalidTaskTransition      = errors.New("invalid task state transition")
	ErrTaskAbandoned              = errors.New("task abandoned")
	ErrInvalidTransition          = errors.New("invalid scene runtime state transition")
	ErrSceneRuntimeNotActive      = errors.New("no active scene runtime")
	ErrSceneRuntimeAlreadyStarted = errors.New("scene runtime already started")
	ErrTemplateNotFound           = errors.New("template not found")
	ErrNoWorkers                  = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize        = errors.New("attempting to create worker pool with a negative channel size")
	ErrJobSystemStopped           = errors.New("job system already shut down")
	ErrCyclicSceneObject          = errors.New("scene object cannot be its own ancestor")
	ErrRuntimeShutdown            = errors.New("project runtime already shut down")
	ErrInstanceDestroyed          = errors.New("asset instance destroyed")
	ErrUnknown                    = errors.New("unknown")
)
