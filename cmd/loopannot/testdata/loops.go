package main

func main() {
	for i := 0; i < 3; i++ {
		for j := 0; j < i; j++ {
			println(i, j)
		}
	}
	println(sum(4))
}

func sum(n int) (s int) {
	for i := 0; i < n; i++ {
		s += i
	}
	return s
}
