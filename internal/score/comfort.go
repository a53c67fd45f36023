package score

import "math"

// HeatIndex returns the apparent temperature in °C accounting for
// humidity, using the Rothfusz regression. Below 27°C the regression is
// not valid and the input temperature is returned unchanged.
func HeatIndex(tempC, humidity float64) float64 {
	if tempC < 27 {
		return tempC
	}

	t := tempC*9/5 + 32
	h := humidity

	hi := -42.379 +
		2.04901523*t +
		10.14333127*h -
		0.22475541*t*h -
		0.00683783*t*t -
		0.05481717*h*h +
		0.00122874*t*t*h +
		0.00085282*t*h*h -
		0.00000199*t*t*h*h

	return (hi - 32) * 5 / 9
}

// WindChill returns the apparent temperature in °C accounting for wind,
// using the Environment Canada formula. Above 10°C or below 4.8 km/h of
// wind the formula is not valid and the input temperature is returned
// unchanged.
func WindChill(tempC, windKmh float64) float64 {
	if tempC > 10 || windKmh < 4.8 {
		return tempC
	}

	v := windKmh * 0.621371 // mph
	t := tempC*9/5 + 32

	wc := 35.74 + 0.6215*t - 35.75*math.Pow(v, 0.16)
	wc += 0.4275 * t * math.Pow(v, 0.16)

	return (wc - 32) * 5 / 9
}
