package model

type Page[T any] struct {
	Results  []T `json:"results"`
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}
