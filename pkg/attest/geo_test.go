package attest

import "testing"

func TestDecimalToExifDMS(t *testing.T) {
	cases := []struct {
		name       string
		degrees    float64
		isLatitude bool
		want       string
	}{
		{"latitude north", 39.3517, true, "39,21.102N"},
		{"longitude west", -73.9857, false, "73,59.142W"},
		{"latitude south", -39.3517, true, "39,21.102S"},
		{"longitude east", 73.9857, false, "73,59.142E"},
		{"equator", 0, true, "0,0.000N"},
		{"prime meridian", 0, false, "0,0.000E"},
		{"sub-degree south", -0.5, true, "0,30.000S"},
		{"whole degrees", 120, false, "120,0.000E"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecimalToExifDMS(tc.degrees, tc.isLatitude)
			if got != tc.want {
				t.Fatalf("DecimalToExifDMS(%v, %v) = %q, want %q", tc.degrees, tc.isLatitude, got, tc.want)
			}
		})
	}
}

func TestDecimalToExifDMS_SignFlipsOnlyHemisphere(t *testing.T) {
	north := DecimalToExifDMS(51.4778, true)
	south := DecimalToExifDMS(-51.4778, true)
	if north[:len(north)-1] != south[:len(south)-1] {
		t.Fatalf("magnitude differs: %q vs %q", north, south)
	}
	if north[len(north)-1] != 'N' || south[len(south)-1] != 'S' {
		t.Fatalf("unexpected hemispheres: %q vs %q", north, south)
	}
}

func TestDecimalToExifDMS_MinuteRounding(t *testing.T) {
	// 59.9996 minutes rounds to "60.000" under plain fixed-point
	// formatting; no special handling.
	got := DecimalToExifDMS(10.0+59.9996/60.0, true)
	if got != "10,60.000N" {
		t.Fatalf("got %q, want %q", got, "10,60.000N")
	}
}
