package geo

import "math"

// Province is one top-level Korean administrative division. AdmCd is the
// numeric administrative code used as the weather/region lookup key; Lat/Lon
// is an approximate centroid used for nearest-province resolution.
type Province struct {
	AdmCd string  `json:"adm_cd"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// Provinces lists the 17 provinces in fixed order. Nearest-province ties are
// resolved by this iteration order (first minimum wins).
var Provinces = []Province{
	{AdmCd: "11", Name: "서울특별시", Lat: 37.5665, Lon: 126.9780},
	{AdmCd: "26", Name: "부산광역시", Lat: 35.1796, Lon: 129.0756},
	{AdmCd: "27", Name: "대구광역시", Lat: 35.8714, Lon: 128.6014},
	{AdmCd: "28", Name: "인천광역시", Lat: 37.4563, Lon: 126.7052},
	{AdmCd: "29", Name: "광주광역시", Lat: 35.1595, Lon: 126.8526},
	{AdmCd: "30", Name: "대전광역시", Lat: 36.3504, Lon: 127.3845},
	{AdmCd: "31", Name: "울산광역시", Lat: 35.5384, Lon: 129.3114},
	{AdmCd: "36", Name: "세종특별자치시", Lat: 36.4801, Lon: 127.2892},
	{AdmCd: "41", Name: "경기도", Lat: 37.4138, Lon: 127.5183},
	{AdmCd: "42", Name: "강원도", Lat: 37.8228, Lon: 128.1555},
	{AdmCd: "43", Name: "충청북도", Lat: 36.6350, Lon: 127.4914},
	{AdmCd: "44", Name: "충청남도", Lat: 36.6588, Lon: 126.6728},
	{AdmCd: "45", Name: "전라북도", Lat: 35.7175, Lon: 127.1530},
	{AdmCd: "46", Name: "전라남도", Lat: 34.8679, Lon: 126.9910},
	{AdmCd: "47", Name: "경상북도", Lat: 36.5783, Lon: 128.5093},
	{AdmCd: "48", Name: "경상남도", Lat: 35.2383, Lon: 128.6922},
	{AdmCd: "50", Name: "제주특별자치도", Lat: 33.4996, Lon: 126.5312},
}

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// NearestProvince resolves a browser-reported coordinate to the province with
// the minimum centroid distance.
func NearestProvince(lat, lon float64) Province {
	best := Provinces[0]
	bestDist := math.Inf(1)
	for _, p := range Provinces {
		d := HaversineKm(lat, lon, p.Lat, p.Lon)
		if d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

// ProvinceByName looks a province up by its full Korean name.
func ProvinceByName(name string) (Province, bool) {
	for _, p := range Provinces {
		if p.Name == name {
			return p, true
		}
	}
	return Province{}, false
}

// ProvinceByCode looks a province up by administrative code.
func ProvinceByCode(admCd string) (Province, bool) {
	for _, p := range Provinces {
		if p.AdmCd == admCd {
			return p, true
		}
	}
	return Province{}, false
}
