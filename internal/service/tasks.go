package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"hub/internal/api"
	"hub/internal/collection"
	"hub/internal/models"
	"hub/internal/view"
)

// TaskView configures the engine for tasks. Tasks without a due date group
// under "No due date".
func TaskView(pageSize int) view.Config[models.Task] {
	return view.Config[models.Task]{
		ID:   func(t models.Task) int64 { return t.ID },
		When: func(t models.Task) string { return t.Due() },
		Text: func(t models.Task) []string {
			return append([]string{t.Title, t.Description}, t.TagNames()...)
		},
		Categories: map[string]func(models.Task) []string{
			"status": func(t models.Task) []string { return one(string(t.Status)) },
			"tag":    func(t models.Task) []string { return t.TagNames() },
		},
		UndatedLabel: "No due date",
		PageSize:     pageSize,
		Policy:       view.FirstIfUnselected,
	}
}

// TaskInput is the payload for a new task.
type TaskInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	DueDate     *string           `json:"due_date"`
	TagIDs      []int64           `json:"tag_ids,omitempty"`
}

// Validate checks the fields the backend requires.
func (in *TaskInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("title is required")
	}
	if in.Status == "" {
		in.Status = models.StatusTodo
	}
	if in.DueDate != nil {
		if _, ok := view.ParseWhen(*in.DueDate, nil); !ok {
			return fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", *in.DueDate)
		}
	}
	return nil
}

// ErrTagsUnsupported is returned when the server has no task-tags route.
var ErrTagsUnsupported = errors.New("tags unsupported by server")

type Tasks struct {
	*Domain[models.Task]
	tags *api.Resource[models.TaskTag]
}

func NewTasks(client *api.Client, pageSize int) *Tasks {
	return &Tasks{
		Domain: &Domain[models.Task]{
			Name:     "tasks",
			Resource: api.NewResource[models.Task](client, "tasks"),
			View:     TaskView(pageSize),
			// the server orders tasks newest first
			Options: collection.Options{Name: "tasks", ReloadOnCreate: true},
		},
		tags: api.NewResource[models.TaskTag](client, "task-tags"),
	}
}

// Create validates in and adds the task to c.
func (s *Tasks) Create(ctx context.Context, c *collection.Collection[models.Task], in TaskInput) (models.Task, error) {
	if err := in.Validate(); err != nil {
		return models.Task{}, err
	}
	return c.Create(ctx, in)
}

// SetStatus moves a task to status with a patch carrying only that field.
func (s *Tasks) SetStatus(ctx context.Context, c *collection.Collection[models.Task], id int64, status models.TaskStatus) (models.Task, error) {
	return c.Update(ctx, id, map[string]any{"status": status})
}

// Advance moves a task one column along todo, in progress, done.
func (s *Tasks) Advance(ctx context.Context, c *collection.Collection[models.Task], t models.Task) (models.Task, error) {
	return s.SetStatus(ctx, c, t.ID, t.Status.Next())
}

// SetDueDate changes only the due date; nil clears it.
func (s *Tasks) SetDueDate(ctx context.Context, c *collection.Collection[models.Task], id int64, due *string) (models.Task, error) {
	return c.Update(ctx, id, map[string]any{"due_date": due})
}

// Tags lists the user's task tags.
func (s *Tasks) Tags(ctx context.Context) ([]models.TaskTag, error) {
	tags, err := s.tags.List(ctx, nil)
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, ErrTagsUnsupported
	}
	return tags, err
}

// CreateTag adds a tag.
func (s *Tasks) CreateTag(ctx context.Context, name, color string) (models.TaskTag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.TaskTag{}, fmt.Errorf("tag name is required")
	}
	return s.tags.Create(ctx, models.TaskTag{Name: name, Color: color})
}

// ResolveTags maps tag names to ids, creating tags that do not exist yet.
func (s *Tasks) ResolveTags(ctx context.Context, names []string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}
	existing, err := s.Tags(ctx)
	if errors.Is(err, ErrTagsUnsupported) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	byName := make(map[string]int64, len(existing))
	for _, tag := range existing {
		byName[strings.ToLower(tag.Name)] = tag.ID
	}

	ids := make([]int64, 0, len(names))
	for _, name := range names {
		if id, ok := byName[strings.ToLower(name)]; ok {
			ids = append(ids, id)
			continue
		}
		tag, err := s.CreateTag(ctx, name, "")
		if err != nil {
			return nil, fmt.Errorf("create tag %q: %w", name, err)
		}
		byName[strings.ToLower(tag.Name)] = tag.ID
		ids = append(ids, tag.ID)
	}
	return ids, nil
}
