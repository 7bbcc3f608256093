package shapes

// Shape is a closed figure.
type Shape interface {
	Area() float64
	Perimeter() float64
}
