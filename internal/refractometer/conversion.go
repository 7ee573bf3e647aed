package refractometer

// Plato/SG conversions follow G. Spedding, "Alcohol and Its Measurement",
// Brewing Materials and Processes, Elsevier 2016, pp. 123-149.

// CorrectBrix divides a Brix reading by the wort correction factor. wcf must
// be non-zero; Engine only calls it with validated positive factors.
func CorrectBrix(bx, wcf float64) float64 {
	return bx / wcf
}

// PlatoToSG converts degrees Plato to specific gravity
func PlatoToSG(p float64) float64 {
	return p/(258.6-(p/258.2*227.1)) + 1.0
}

// SGToPlato converts specific gravity to degrees Plato
func SGToPlato(sg float64) float64 {
	return sg*sg*-205.347 + 668.72*sg - 463.37
}
