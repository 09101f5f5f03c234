package httpserver

import (
	"time"

	"culture_hotspots/internal/domain"
)

type envelope struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	Data     any       `json:"data"`
	Metadata *metadata `json:"metadata,omitempty"`
}

type metadata struct {
	TotalCount int `json:"totalCount"`
}

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Type      string  `json:"type"`
}

type hotspotDTO struct {
	ID          string    `json:"id"`
	Name        *string   `json:"name"`
	Address     *string   `json:"address"`
	Type        *string   `json:"type"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"imageUrl"`
	Location    *location `json:"location"`

	LoopsGuide              *string `json:"loopsGuide,omitempty"`
	Loop                    *string `json:"loop,omitempty"`
	TourNum                 *string `json:"tourNum,omitempty"`
	OrderNum                *string `json:"orderNum,omitempty"`
	LoopTourName            *string `json:"loopTourName,omitempty"`
	LoopTourURL             *string `json:"loopTourUrl,omitempty"`
	TourLabel               *string `json:"tourLabel,omitempty"`
	Neighbourhood           *string `json:"neighbourhood,omitempty"`
	Duration                *string `json:"duration,omitempty"`
	EntryType               *string `json:"entryType,omitempty"`
	Interests               *string `json:"interests,omitempty"`
	DirectionsTransit       *string `json:"directionsTransit,omitempty"`
	DirectionsCar           *string `json:"directionsCar,omitempty"`
	ExternalLink            *string `json:"externalLink,omitempty"`
	ImageCredit             *string `json:"imageCredit,omitempty"`
	ImageCreditExternalLink *string `json:"imageCreditExternalLink,omitempty"`
	ImageAltText            *string `json:"imageAltText,omitempty"`
	ThumbURL                *string `json:"thumbUrl,omitempty"`
	ImageOrientation        *string `json:"imageOrientation,omitempty"`
	ObjectID                *string `json:"objectId,omitempty"`

	Extras    map[string]string `json:"extras,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func toDTO(h domain.Hotspot) hotspotDTO {
	d := hotspotDTO{
		ID: h.ID, Name: h.Name, Address: h.Address, Type: h.Type,
		Description: h.Description, ImageURL: h.ImageURL,

		LoopsGuide: h.LoopsGuide, Loop: h.Loop, TourNum: h.TourNum, OrderNum: h.OrderNum,
		LoopTourName: h.LoopTourName, LoopTourURL: h.LoopTourURL, TourLabel: h.TourLabel,
		Neighbourhood: h.Neighbourhood, Duration: h.Duration, EntryType: h.EntryType,
		Interests: h.Interests, DirectionsTransit: h.DirectionsTransit, DirectionsCar: h.DirectionsCar,
		ExternalLink: h.ExternalLink, ImageCredit: h.ImageCredit,
		ImageCreditExternalLink: h.ImageCreditExternalLink, ImageAltText: h.ImageAltText,
		ThumbURL: h.ThumbURL, ImageOrientation: h.ImageOrientation, ObjectID: h.ObjectID,

		Extras: h.Extras, CreatedAt: h.CreatedAt, UpdatedAt: h.UpdatedAt,
	}
	if h.Location != nil {
		d.Location = &location{Latitude: h.Location.Lat(), Longitude: h.Location.Lon(), Type: h.Location.Type}
	}
	return d
}

func toDTOs(hs []domain.Hotspot) []hotspotDTO {
	out := make([]hotspotDTO, 0, len(hs))
	for _, h := range hs {
		out = append(out, toDTO(h))
	}
	return out
}
