package intmap

// NextPrime returns the smallest prime number that is >= n, but never less
// than 3. Table capacities below 3 are unusable because the secondary probe
// step is derived modulo capacity-2.
//
// The result is what makes double hashing sound: a prime capacity is coprime
// with every step size in [1, capacity-1], so a probe sequence visits all
// slots before repeating.
//
// Panics if n < 1.
func NextPrime(n int) int {
	if n < 1 {
		panic("intmap: NextPrime requires n >= 1")
	}
	if n <= 3 {
		return 3
	}
	if n%2 == 0 {
		n++
	}
	for !isPrime(n) {
		n += 2
	}
	return n
}

// isPrime reports whether n is prime, for odd n > 3, via 6k±1 trial division.
func isPrime(n int) bool {
	if n%3 == 0 {
		return n == 3
	}
	for d := 5; d*d <= n; d += 6 {
		if n%d == 0 || n%(d+2) == 0 {
			return false
		}
	}
	return true
}
