package origin

const (
	PlaceholderLocation = "Local não definido"
	PlaceholderAsset    = "Ativo não definido"
)

// Project выводит местоположение и актив наряда из текущего выбора.
// Пустые строки - явный сигнал форме очистить поля.
func Project(sel Selection, anomalies []AnomalySummary) Projection {
	switch sel.Type {
	case OriginAnomaly:
		if sel.Anomaly == nil || sel.Anomaly.AnomalyID == "" {
			return Projection{}
		}
		for _, a := range anomalies {
			if a.ID == sel.Anomaly.AnomalyID {
				return projectAnomaly(a)
			}
		}
		return Projection{}
	case OriginPlan:
		if sel.Plan == nil {
			return Projection{}
		}
		return projectPlan(sel.Plan)
	default:
		return Projection{}
	}
}

func projectAnomaly(a AnomalySummary) Projection {
	p := Projection{Location: a.Location, Asset: a.Asset}
	if p.Location == "" {
		p.Location = PlaceholderLocation
	}
	if p.Asset == "" {
		p.Asset = PlaceholderAsset
	}
	return p
}

// Первая выбранная задача в порядке выбора планов и порядке генерации внутри группы.
func projectPlan(p *PlanOrigin) Projection {
	if len(p.SelectedTaskIDs) == 0 {
		return Projection{}
	}
	for _, planID := range p.SelectedPlanIDs {
		for _, t := range p.TaskGroups[planID].Tasks {
			if p.isTaskSelected(t.ID) {
				return Projection{Location: t.Location, Asset: t.Asset}
			}
		}
	}
	return Projection{}
}
