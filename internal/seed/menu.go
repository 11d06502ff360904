package seed

// MenuCategory is one category of the default menu.
type MenuCategory struct {
	Name  string
	Items []MenuItem
}

// MenuItem lists an item's prices; the first one becomes the default.
type MenuItem struct {
	Name   string
	Prices []string
}

// DefaultMenu is the shop's starting menu, in display order.
var DefaultMenu = []MenuCategory{
	{
		Name: "Выпечка",
		Items: []MenuItem{
			{Name: "Кастера", Prices: []string{"140"}},
			{Name: "Косичка с маком", Prices: []string{"80"}},
			{Name: "Красная фасоль", Prices: []string{"140"}},
			{Name: "Лотти бон", Prices: []string{"140"}},
			{Name: "Миникруассан", Prices: []string{"40"}},
			{Name: "Синнабон", Prices: []string{"140"}},
			{Name: "Собора", Prices: []string{"120"}},
			{Name: "Собора фасоль", Prices: []string{"170"}},
			{Name: "Уайт ролл", Prices: []string{"120"}},
			{Name: "Чесночные гренки", Prices: []string{"140"}},
			{Name: "Чокко-куки", Prices: []string{"140"}},
		},
	},
	{
		Name: "Чай",
		Items: []MenuItem{
			{Name: "Чай Малина", Prices: []string{"120"}},
			{Name: "Чай Облепиха", Prices: []string{"120"}},
			{Name: "Чай Смородина", Prices: []string{"120"}},
			{Name: "Чай Цитрус", Prices: []string{"120"}},
			{Name: "Чай жасмин", Prices: []string{"120"}},
		},
	},
	{
		Name: "Кофе",
		Items: []MenuItem{
			{Name: "Американо", Prices: []string{"120", "140"}},
			{Name: "Какао", Prices: []string{"120", "150"}},
			{Name: "Капучино", Prices: []string{"160", "200"}},
			{Name: "Латте", Prices: []string{"160", "230"}},
			{Name: "Раф", Prices: []string{"240", "280"}},
			{Name: "Флэт Уайт", Prices: []string{"190"}},
			{Name: "Доппио", Prices: []string{"120"}},
			{Name: "Бамбл", Prices: []string{"220", "270"}},
		},
	},
	{
		Name: "Вода",
		Items: []MenuItem{
			{Name: "Байтик", Prices: []string{"30"}},
			{Name: "Арашан", Prices: []string{"65"}},
			{Name: "Легенда", Prices: []string{"30"}},
			{Name: "Легенда ст", Prices: []string{"55"}},
			{Name: "Максым", Prices: []string{"80"}},
			{Name: "Ысык-Ата", Prices: []string{"30"}},
			{Name: "Ысык-Ата ст", Prices: []string{"65"}},
		},
	},
	{
		Name: "Холодные напитки",
		Items: []MenuItem{
			{Name: "Бабл ти", Prices: []string{"250"}},
			{Name: "Ice tea", Prices: []string{"130"}},
			{Name: "Мохито классика", Prices: []string{"180"}},
			{Name: "Мохито клубника", Prices: []string{"180"}},
			{Name: "Мохито маракуйя", Prices: []string{"230"}},
		},
	},
}
