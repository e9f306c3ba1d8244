package domain

// ExpenseCategory values mirror the cost taxonomy the reporting spreadsheet
// expects. Free-form strings are still accepted wherever a category is
// stored; these are the well-known ones.
type ExpenseCategory string

const (
	CategoryTransporteApp        ExpenseCategory = "Ônibus/ Uber"
	CategoryPedagio              ExpenseCategory = "Pedágio"
	CategoryEstacionamento       ExpenseCategory = "Estacionamento"
	CategorySupermercado         ExpenseCategory = "Supermercado"
	CategoryMaterialEscritorio   ExpenseCategory = "Material Escritório"
	CategoryCopiadora            ExpenseCategory = "Copiadora"
	CategoryHospedagem           ExpenseCategory = "Hospedagem"
	CategoryLavanderia           ExpenseCategory = "Lavanderia/ Faxina"
	CategoryUtilidades           ExpenseCategory = "Contas Luz/Gás/Água"
	CategoryManutencaoGeral      ExpenseCategory = "Manutenção"
	CategoryCarro                ExpenseCategory = "Carro"
	CategoryCorreio              ExpenseCategory = "Correio"
	CategoryRefeicao             ExpenseCategory = "Refeição"
	CategoryTaxas                ExpenseCategory = "Taxas"
	CategoryManutencaoEscritorio ExpenseCategory = "Manutenção Escritório"
	CategoryOutros               ExpenseCategory = "Outros"
)

// AllCategories lists every well-known category, in the order the entry
// forms present them.
func AllCategories() []ExpenseCategory {
	return []ExpenseCategory{
		CategoryTransporteApp,
		CategoryPedagio,
		CategoryEstacionamento,
		CategorySupermercado,
		CategoryMaterialEscritorio,
		CategoryCopiadora,
		CategoryHospedagem,
		CategoryLavanderia,
		CategoryUtilidades,
		CategoryManutencaoGeral,
		CategoryCarro,
		CategoryCorreio,
		CategoryRefeicao,
		CategoryTaxas,
		CategoryManutencaoEscritorio,
		CategoryOutros,
	}
}
