package entity

// Sale is one confirmed sell batch.
type Sale struct {
	ItemName       string
	Quantity       int
	TotalPrice     int64
	UnitPrice      int64
	NetUnitPrice   float64
	CostBasis      float64
	ProfitPerUnit  float64
	CostBasisKnown bool
}

func (s Sale) Cost() float64 {
	return s.CostBasis * float64(s.Quantity)
}

func (s Sale) Profit() float64 {
	return s.ProfitPerUnit * float64(s.Quantity)
}
