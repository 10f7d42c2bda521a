package main

func bar(n int) {
	for n > 0 {
		n--
	}
}
