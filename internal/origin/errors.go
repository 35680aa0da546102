package origin

import "errors"

var (
	ErrInvalidTransition     = errors.New("недопустимый переход выбора происхождения")
	ErrInvalidSelection      = errors.New("некорректное значение выбора происхождения")
	ErrInconsistentSelection = errors.New("выбранная задача не принадлежит ни одной группе плана")
	ErrIncompleteSelection   = errors.New("выбор происхождения не завершён")
	ErrAnomalyNotFound       = errors.New("аномалия не найдена среди открытых")
	ErrPlanNotFound          = errors.New("план ТО не найден среди активных")
	ErrScopeIncomplete       = errors.New("для фильтра аномалий нужны и площадка, и подразделение")
	ErrStaleResult           = errors.New("результат устарел: по этому ключу уже выполнен более новый запрос")
	ErrUnknownAction         = errors.New("неизвестное действие")
)
