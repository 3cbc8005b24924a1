package billing

import "time"

// OpenBill is ceil(elapsed/3600 * rate) in whole currency units.
func OpenBill(elapsedSeconds, hourlyRate int64) int64 {
	if elapsedSeconds <= 0 || hourlyRate <= 0 {
		return 0
	}
	return ceilDiv(elapsedSeconds*hourlyRate, 3600)
}

// PackageBill is the flat price of a package; it does not depend on how
// much of the package was actually used.
func PackageBill(packageSeconds, hourlyRate int64) int64 {
	return OpenBill(packageSeconds, hourlyRate)
}

// SessionBill is the amount carried over from earlier tables plus the bill
// accrued on the current one.
func SessionBill(c Clock, hourlyRate, carried int64, now time.Time) int64 {
	if c.IsPackage() {
		return carried + PackageBill(c.PackageSeconds, hourlyRate)
	}
	return carried + OpenBill(c.Elapsed(now), hourlyRate)
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
