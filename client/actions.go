package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/ifabiensd-source/Zone-inscriptions/internal/engine"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/models"
)

// User actions. Each validates against the local snapshot first; a validation
// failure never reaches the network.

// RegisterYouth checks required fields and seat capacity locally, then submits.
// The capacity check is advisory: another client racing on the same snapshot
// can still overbook, the server only guarantees no registration is lost.
func (c *Client) RegisterYouth(ctx context.Context, activityID int64, form models.RegistrationForm) (*models.AppData, error) {
	if err := engine.ValidateRegistrationForm(form); err != nil {
		return nil, err
	}
	snapshot := c.Data()
	if snapshot == nil {
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
		snapshot = c.Data()
		if snapshot == nil {
			return nil, ErrNotLoaded
		}
	}
	if err := engine.ValidateRegistration(snapshot, activityID, form.Department); err != nil {
		return nil, err
	}
	op, err := engine.NewOperation(engine.OpRegisterYouth, engine.RegisterPayload{
		ActivityID:   activityID,
		Registration: form,
	})
	if err != nil {
		return nil, err
	}
	return c.Mutate(ctx, op)
}

func (c *Client) UnregisterYouth(ctx context.Context, activityID, registrationID int64) (*models.AppData, error) {
	op, err := engine.NewOperation(engine.OpUnregisterYouth, engine.UnregisterPayload{
		ActivityID:     activityID,
		RegistrationID: registrationID,
	})
	if err != nil {
		return nil, err
	}
	return c.Mutate(ctx, op)
}

func (c *Client) AddActivity(ctx context.Context, form engine.ActivityForm) (*models.AppData, error) {
	op, err := engine.NewOperation(engine.OpAddActivity, form)
	if err != nil {
		return nil, err
	}
	return c.Mutate(ctx, op)
}

func (c *Client) UpdateActivity(ctx context.Context, id int64, patch engine.ActivityPatch) (*models.AppData, error) {
	op, err := engine.NewOperation(engine.OpUpdateActivity, engine.UpdateActivityPayload{ID: id, Data: patch})
	if err != nil {
		return nil, err
	}
	return c.Mutate(ctx, op)
}

func (c *Client) DeleteActivity(ctx context.Context, id int64) (*models.AppData, error) {
	op, err := engine.NewOperation(engine.OpDeleteActivity, engine.DeleteActivityPayload{ID: id})
	if err != nil {
		return nil, err
	}
	return c.Mutate(ctx, op)
}

// AddService rejects duplicate names locally before submitting; the server
// would silently ignore the duplicate, which is harder to explain to a user.
func (c *Client) AddService(ctx context.Context, svc models.Service) (*models.AppData, error) {
	if svc.Name == "" || svc.Code == "" {
		return nil, fmt.Errorf("%w: name and code", engine.ErrMissingField)
	}
	if snapshot := c.Data(); snapshot != nil {
		for _, s := range snapshot.Services {
			if strings.EqualFold(s.Name, svc.Name) {
				return nil, fmt.Errorf("%w: %s", engine.ErrDuplicateService, svc.Name)
			}
		}
	}
	op, err := engine.NewOperation(engine.OpAddService, svc)
	if err != nil {
		return nil, err
	}
	return c.Mutate(ctx, op)
}

func (c *Client) UpdateService(ctx context.Context, name, newCode string) (*models.AppData, error) {
	op, err := engine.NewOperation(engine.OpUpdateService, engine.UpdateServicePayload{Name: name, NewCode: newCode})
	if err != nil {
		return nil, err
	}
	return c.Mutate(ctx, op)
}

func (c *Client) DeleteService(ctx context.Context, name string) (*models.AppData, error) {
	op, err := engine.NewOperation(engine.OpDeleteService, engine.DeleteServicePayload{Name: name})
	if err != nil {
		return nil, err
	}
	return c.Mutate(ctx, op)
}

func (c *Client) SetTheme(ctx context.Context, theme models.Theme) (*models.AppData, error) {
	op, err := engine.NewOperation(engine.OpSetTheme, theme)
	if err != nil {
		return nil, err
	}
	return c.Mutate(ctx, op)
}

func (c *Client) SetAdminPassword(ctx context.Context, password string) (*models.AppData, error) {
	op, err := engine.NewOperation(engine.OpSetAdminPassword, password)
	if err != nil {
		return nil, err
	}
	return c.Mutate(ctx, op)
}
