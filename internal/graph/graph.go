package graph

import (
	"fmt"

	"github.com/xela07ax/dentops-gate-prototype/internal/domain"
)

// Ошибки конфигурации. Это единственный класс ошибок, которому разрешено
// покидать подсистему ворот: неизвестный id означает дефект деплоя, а не
// пользовательское состояние.
var (
	ErrUnknownNode   = fmt.Errorf("requirements: unknown node id")
	ErrUnknownAction = fmt.Errorf("requirements: unknown action id")
)

// GetNode — тотальный lookup по фиксированному перечислению узлов.
func GetNode(id domain.RequirementID) (domain.RequirementNode, error) {
	n, ok := nodes[id]
	if !ok {
		return domain.RequirementNode{}, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	return n, nil
}

// GetAction — тотальный lookup по перечислению действий.
func GetAction(id domain.ActionID) (domain.ActionDefinition, error) {
	a, ok := actions[id]
	if !ok {
		return domain.ActionDefinition{}, fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}
	return a, nil
}

// TopoOrder разворачивает набор требований в плоский список без дублей,
// зависимости раньше зависимых. Append происходит после рекурсии в DependsOn,
// поэтому результат — валидный топологический порядок; порядок первого
// вхождения сохраняется.
//
// Неразрешимый id — ErrUnknownNode. Исходная реализация молча пропускала
// такие узлы; здесь выбран строгий вариант: тихий пропуск маскирует дефект
// конфигурации.
func TopoOrder(ids []domain.RequirementID) ([]domain.RequirementID, error) {
	seen := make(map[domain.RequirementID]struct{}, len(nodes))
	out := make([]domain.RequirementID, 0, len(nodes))

	var visit func(id domain.RequirementID) error
	visit = func(id domain.RequirementID) error {
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}

		n, err := GetNode(id)
		if err != nil {
			return err
		}
		for _, dep := range n.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		out = append(out, id)
		return nil
	}

	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return out, nil
}
