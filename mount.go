package atrium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrAlreadyMounted is returned when Mount is called on a Controller
	// that already has a composition root attached. The attached root
	// stays in place; Unmount it before mounting another.
	ErrAlreadyMounted = errors.New("a composition root is already mounted")

	// ErrNotMounted is returned when Unmount is called on a Controller
	// with nothing attached.
	ErrNotMounted = errors.New("no composition root is mounted")
)

// Attachment is an interface for the surface a composition root is handed
// to when it's mounted. The host environment decides what attaching means;
// writing a document somewhere is typical, but anything that can take a
// Node and later give it back up works.
type Attachment interface {
	// Attach hands the passed composition root to the surface. If it
	// returns an error, the surface is expected to be in the state it
	// was in before the call.
	Attach(ctx context.Context, node *Node) error

	// Detach removes whatever Attach handed over. If it returns an
	// error, the attachment is expected to still be in place.
	Detach(ctx context.Context) error
}

// Controller drives the lifecycle of a composition root on an Attachment:
// unmounted, then mounted, then unmounted again, as many times as the host
// wants. At most one root is mounted at a time.
//
// A Controller is not safe for concurrent use; it expects the single
// mount-then-unmount flow of a host environment, not concurrent callers. A
// Controller must be instantiated through NewController, its empty value is
// not usable.
type Controller struct {
	registry   *Registry
	attachment Attachment

	mounted bool
	node    *Node
}

// NewController returns a Controller that composes Units against the passed
// Registry and mounts the results onto the passed Attachment.
func NewController(registry *Registry, attachment Attachment) *Controller {
	return &Controller{
		registry:   registry,
		attachment: attachment,
	}
}

// Mount composes the passed Unit, with the passed options, and attaches the
// result. When a root is already mounted, Mount returns an error wrapping
// ErrAlreadyMounted and the mounted root stays in place, untouched. When
// composing or attaching fails, the error is returned and the Controller
// stays unmounted.
//
// Mounting after an Unmount composes the Unit afresh; a Unit mounted,
// unmounted, and mounted again produces the same attached content as if it
// had only been mounted once.
func (c *Controller) Mount(ctx context.Context, unit Unit, opts ...ComposeOption) (err error) {
	ctx, span := tracer().Start(ctx, "atrium.Mount")
	defer func() { endSpan(span, err) }()

	if unit == nil {
		err = fmt.Errorf("mounting unit: %w", ErrNilUnit)
		return err
	}
	name := unit.Name(ctx)
	span.SetAttributes(attrUnit.String(name))
	if c.mounted {
		err = fmt.Errorf("mounting %q over %q: %w", name, c.node.Name(), ErrAlreadyMounted)
		return err
	}
	node, err := Compose(ctx, c.registry, unit, opts...)
	if err != nil {
		return err
	}
	err = c.attachment.Attach(ctx, node)
	if err != nil {
		err = fmt.Errorf("error attaching composition root %q: %w", node.Name(), err)
		logError(ctx, err, "error attaching composition root", slog.String("unit", node.Name()))
		return err
	}
	c.mounted = true
	c.node = node
	logger(ctx).InfoContext(ctx, "mounted composition root", slog.String("unit", node.Name()))
	return nil
}

// Unmount detaches the mounted composition root and releases it. When
// nothing is mounted, it returns an error wrapping ErrNotMounted. When
// detaching fails, the root is still considered mounted, so the caller can
// retry.
func (c *Controller) Unmount(ctx context.Context) (err error) {
	ctx, span := tracer().Start(ctx, "atrium.Unmount")
	defer func() { endSpan(span, err) }()

	if !c.mounted {
		err = fmt.Errorf("unmounting: %w", ErrNotMounted)
		return err
	}
	name := c.node.Name()
	span.SetAttributes(attrUnit.String(name))
	err = c.attachment.Detach(ctx)
	if err != nil {
		err = fmt.Errorf("error detaching composition root %q: %w", name, err)
		logError(ctx, err, "error detaching composition root", slog.String("unit", name))
		return err
	}
	c.mounted = false
	c.node = nil
	logger(ctx).InfoContext(ctx, "unmounted composition root", slog.String("unit", name))
	return nil
}

// Node returns the mounted composition root, or nil when nothing is
// mounted.
func (c *Controller) Node() *Node {
	return c.node
}

// Mounted reports whether a composition root is currently mounted.
func (c *Controller) Mounted() bool {
	return c.mounted
}
