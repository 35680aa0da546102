package origin

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGenerator выдаёт идентификаторы сгенерированных задач.
type IDGenerator interface {
	NewID() string
}

// ULIDGenerator - 26-символьные ULID с монотонной энтропией.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// Expander разворачивает шаблоны плана в конкретные задачи по оборудованию.
type Expander struct {
	ids       IDGenerator
	validator *IDValidator
}

func NewExpander(ids IDGenerator, validator *IDValidator) *Expander {
	if ids == nil {
		ids = NewULIDGenerator()
	}
	if validator == nil {
		validator = NewIDValidator(nil)
	}
	return &Expander{ids: ids, validator: validator}
}

// Expand: порядок "сначала оборудование, внутри - шаблоны" является контрактом.
// Задачи с недопустимым id не отбрасываются, отказ уходит в приёмник валидатора.
func (e *Expander) Expand(ctx context.Context, plan Plan, equipmentIDs []string) []GeneratedTask {
	if len(plan.Templates) == 0 || len(equipmentIDs) == 0 {
		return []GeneratedTask{}
	}

	tasks := make([]GeneratedTask, 0, len(plan.Templates)*len(equipmentIDs))
	for _, equipmentID := range equipmentIDs {
		ref, _ := plan.equipment(equipmentID)
		for _, tpl := range plan.Templates {
			task := GeneratedTask{
				ID:                     e.ids.NewID(),
				TemplateID:             tpl.ID,
				Tag:                    fmt.Sprintf("%s-EQ%s", tpl.TagBase, equipmentID),
				Description:            fmt.Sprintf("%s - Equipamento %s", tpl.Description, equipmentID),
				Category:               tpl.Category,
				MaintenanceType:        tpl.MaintenanceType,
				Frequency:              tpl.Frequency,
				Criticality:            tpl.Criticality,
				EstimatedDurationHours: tpl.EstimatedDurationHours,
				EstimatedMinutes:       tpl.EstimatedMinutes,
				Owner:                  tpl.SuggestedOwner,
				Notes:                  tpl.Notes,
				EquipmentID:            equipmentID,
				Location:               ref.Location,
				Asset:                  ref.Asset,
				SubTasks:               append([]string{}, tpl.SubTasks...),
				Resources:              append([]string{}, tpl.Resources...),
			}
			e.validator.Check(ctx, task.ID, plan.ID, task.Description)
			tasks = append(tasks, task)
		}
	}
	return tasks
}
