package seeders

type plantSeed struct {
	ID, Name, Location string
}

type unitSeed struct {
	ID, PlantID, Name string
}

type equipmentSeed struct {
	ID, PlantID, Location, Asset string
}

type anomalySeed struct {
	ID, PlantID, UnitID, EquipmentID string
	Description, Location, Asset     string
	Priority, Status                 string
	HoursAgo                         int
}

type templateSeed struct {
	ID, TagBase, Description                          string
	Category, MaintenanceType, Frequency, Criticality string
	Hours                                             float64
	Minutes                                           int
	Owner, Notes                                      string
	SubTasks, Resources                               []string
}

type planSeed struct {
	ID, PlantID, Name, Category string
	Active                      bool
	Templates                   []templateSeed
	Equipment                   []string
}

var plantsData = []plantSeed{
	{ID: "P1", Name: "Северная площадка", Location: "Промзона 1"},
	{ID: "P2", Name: "Южная площадка", Location: ""},
}

var unitsData = []unitSeed{
	{ID: "U1", PlantID: "P1", Name: "Сборочный цех"},
	{ID: "U2", PlantID: "P1", Name: "Котельная"},
	{ID: "U3", PlantID: "P2", Name: "Склад готовой продукции"},
}

var equipmentData = []equipmentSeed{
	{ID: "1", PlantID: "P1", Location: "Цех 1", Asset: "Общее оборудование"},
	{ID: "E7", PlantID: "P1", Location: "Корпус B", Asset: "Конвейер 7"},
	{ID: "E12", PlantID: "P1", Location: "Котельная", Asset: "Насос 12"},
	{ID: "E30", PlantID: "P2", Location: "Подстанция", Asset: ""},
}

var anomaliesData = []anomalySeed{
	{ID: "AN1", PlantID: "P1", UnitID: "U1", Description: "Течь масла", Location: "Корпус A", Asset: "Насос 3", Priority: "HIGH", Status: "AWAITING", HoursAgo: 5},
	{ID: "AN2", PlantID: "P1", UnitID: "U1", EquipmentID: "E7", Description: "Посторонний шум", Priority: "MEDIUM", Status: "UNDER_ANALYSIS", HoursAgo: 2},
	{ID: "AN3", PlantID: "P1", UnitID: "U2", EquipmentID: "E12", Description: "Перегрев", Priority: "HIGH", Status: "AWAITING", HoursAgo: 1},
	{ID: "AN4", PlantID: "P1", UnitID: "U1", Description: "Устранено", Priority: "LOW", Status: "CLOSED", HoursAgo: 48},
	{ID: "AN5", PlantID: "P2", UnitID: "U3", Description: "Нет освещения", Priority: "MEDIUM", Status: "AWAITING", HoursAgo: 10},
}

var plansData = []planSeed{
	{
		ID: "PL1", PlantID: "P1", Name: "Еженедельный осмотр конвейеров", Category: "Механика", Active: true,
		Templates: []templateSeed{
			{
				ID: "PL1-T1", TagBase: "INS", Description: "Осмотр ленты",
				Category: "Механика", MaintenanceType: "PREVENTIVE", Frequency: "WEEKLY", Criticality: "MEDIUM",
				Hours: 0.5, Minutes: 30, Owner: "Механик",
				SubTasks: []string{"Проверить натяжение", "Проверить износ"},
			},
			{
				ID: "PL1-T2", TagBase: "LUB", Description: "Смазка подшипников",
				Category: "Механика", MaintenanceType: "PREVENTIVE", Frequency: "WEEKLY", Criticality: "LOW",
				Hours: 0.25, Minutes: 15, Owner: "Смазчик", Notes: "Только консистентная смазка",
				Resources: []string{"Смазка Литол-24", "Шприц"},
			},
		},
		Equipment: []string{"E7"},
	},
	{
		ID: "PL2", PlantID: "P1", Name: "Ежемесячная проверка насосов", Category: "Гидравлика", Active: true,
		Templates: []templateSeed{
			{
				ID: "PL2-T1", TagBase: "VIB", Description: "Замер вибрации",
				Category: "Диагностика", MaintenanceType: "PREDICTIVE", Frequency: "MONTHLY", Criticality: "HIGH",
				Hours: 1, Minutes: 60, Owner: "Диагност",
			},
		},
	},
	{
		ID: "PL3", PlantID: "P1", Name: "Архивный план", Active: false,
	},
}
