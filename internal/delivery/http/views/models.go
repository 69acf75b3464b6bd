package views

import "showscheduler/internal/domain"

// ShowIndexPage is the data for the shows listing.
type ShowIndexPage struct {
	Page          domain.Page[*domain.Show]
	CurrentFilter string
}

// ShowFormPage is the data for the add and edit show forms.
// Residency enables the weekly repeat field on the add form.
type ShowFormPage struct {
	Action    string
	Heading   string
	Submit    string
	Error     string
	Show      *domain.Show
	Residency bool
	Weeks     int
}

// BandIndexPage is the data for the bands listing.
type BandIndexPage struct {
	Page          domain.Page[*domain.Band]
	CurrentFilter string
}

// BandFormPage is the data for the add and edit band forms.
type BandFormPage struct {
	Action  string
	Heading string
	Submit  string
	Error   string
	Band    *domain.Band
	Shows   []domain.ShowOption
}

// LoginPage is the data for the operator login form.
type LoginPage struct {
	Email     string
	ReturnURL string
	Error     string
}

// ErrorPage is the data for error pages.
type ErrorPage struct {
	Status  int
	Message string
}

// WeatherPage is the data for the weather widget. Weather is nil when unavailable.
type WeatherPage struct {
	Weather *domain.Weather
}
