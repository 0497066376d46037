package component

import "context"

// Func adapts plain closures into a Component. Nil fields are no-ops,
// and a nil health function reports healthy.
type Func struct {
	ComponentName string
	OnStart       func(ctx context.Context) error
	OnStop        func(ctx context.Context) error
	OnHealth      func(ctx context.Context) Health
}

func (f *Func) Name() string { return f.ComponentName }

func (f *Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

func (f *Func) Stop(ctx context.Context) error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop(ctx)
}

func (f *Func) Health(ctx context.Context) Health {
	if f.OnHealth == nil {
		return Health{Name: f.ComponentName, Status: StatusHealthy}
	}
	return f.OnHealth(ctx)
}
