package main

func main() {
	for i := 0; i < foo(); i++ {
		bar(i)
	}
}
