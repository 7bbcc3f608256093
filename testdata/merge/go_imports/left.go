package main

import (
	"fmt"
	"io"
)

func main() {
	fmt.Println("hi")
}
