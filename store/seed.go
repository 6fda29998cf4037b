package store

import (
	"time"

	"civicsync-be/models"
)

const day = 24 * time.Hour

// DefaultSeed is the demo data set for Bhopal, dated relative to now.
func DefaultSeed(now time.Time) Snapshot {
	issue := func(id string, t models.IssueType, desc string, lat, lng float64, addr string,
		status models.IssueStatus, upvotes int, by string, age time.Duration, remarks string) models.Issue {
		at := now.Add(-age)
		return models.Issue{
			ID:           id,
			Type:         string(t),
			Description:  desc,
			Location:     models.Location{Lat: lat, Lng: lng, Address: addr},
			Status:       status,
			Upvotes:      upvotes,
			ReportedBy:   by,
			ReportedAt:   at,
			UpdatedAt:    at,
			AdminRemarks: remarks,
		}
	}
	date := func(ahead time.Duration) string {
		return now.Add(ahead).Format(models.EventDateLayout)
	}

	return Snapshot{
		Issues: []models.Issue{
			issue("1", models.Potholes,
				"Multiple deep potholes on Hoshangabad Road near Ayodhya Bypass causing severe traffic congestion and vehicle damage",
				23.2599, 77.4126, "Hoshangabad Road, Near Ayodhya Bypass, Bhopal",
				models.Pending, 47, "Rajesh Kumar", 1*day, ""),
			issue("2", models.WaterLeakage,
				"Major water pipeline burst near Shahpura Lake causing water wastage and road flooding",
				23.2156, 77.4304, "Shahpura Lake Road, Shahpura, Bhopal",
				models.InProgress, 32, "Priya Sharma", 2*day,
				"BMC water department team dispatched. Repair work in progress."),
			issue("3", models.GarbageCollection,
				"Garbage not collected for 5 days in Arera Colony Sector C, creating unhygienic conditions and foul smell",
				23.2156, 77.4304, "Arera Colony Sector C, E-7, Bhopal",
				models.Pending, 28, "Amit Verma", 3*day, ""),
			issue("4", models.StreetlightIssue,
				"All street lights non-functional on VIP Road from Lalghati to Roshanpura, creating safety concerns",
				23.2599, 77.4126, "VIP Road, Lalghati to Roshanpura, Bhopal",
				models.Resolved, 19, "Sunita Jain", 5*day,
				"All street lights repaired and tested. LED lights installed for better illumination."),
			issue("5", models.SewerOverflow,
				"Sewage overflow near Upper Lake causing environmental pollution and health hazards for morning walkers",
				23.2599, 77.4126, "Upper Lake, Shyamla Hills, Bhopal",
				models.InProgress, 56, "Dr. Mohan Gupta", 4*day,
				"Environmental team investigating. Temporary barriers installed."),
			issue("6", models.RoadDamage,
				"Severe road cracks and uneven surface on Link Road No. 1 in New Market area affecting daily commute",
				23.2599, 77.4126, "Link Road No. 1, New Market, Bhopal",
				models.Pending, 23, "Kavita Singh", 6*day, ""),
			issue("7", models.TreeFall,
				"Large banyan tree fallen on Berasia Road blocking traffic and posing danger to vehicles and pedestrians",
				23.2599, 77.4126, "Berasia Road, Near Karond, Bhopal",
				models.Resolved, 41, "Ravi Patel", 7*day,
				"Tree removed by BMC disaster management team. Road cleared for traffic."),
			issue("8", models.OpenWires,
				"Exposed electrical wires hanging dangerously low near MP Nagar Zone 2 bus stop, risk of electrocution",
				23.2599, 77.4126, "MP Nagar Zone 2, Bus Stop, Bhopal",
				models.Pending, 35, "Anita Dubey", 8*day, ""),
		},
		Votes: []models.Vote{},
		Events: []models.Event{
			{
				ID:                   "1",
				Title:                "Upper Lake Cleanup Drive",
				Description:          "Join us for a comprehensive cleanup of Upper Lake area to preserve Bhopal's natural heritage",
				Date:                 date(7 * day),
				Location:             "Upper Lake, Shyamla Hills, Bhopal",
				Type:                 models.Cleanup,
				VolunteerSlots:       100,
				RegisteredVolunteers: 67,
			},
			{
				ID:          "2",
				Title:       "Bhopal Municipal Corporation Monthly Meeting",
				Description: "Public meeting to discuss city development projects and citizen grievances",
				Date:        date(14 * day),
				Location:    "BMC Office, Arera Hills, Bhopal",
				Type:        models.Meeting,
			},
			{
				ID:                   "3",
				Title:                "Road Safety Awareness Campaign",
				Description:          "Educational program on traffic rules and road safety for Bhopal citizens",
				Date:                 date(21 * day),
				Location:             "TT Nagar Stadium, Bhopal",
				Type:                 models.Awareness,
				VolunteerSlots:       25,
				RegisteredVolunteers: 18,
			},
		},
		ChatMessages: []models.ChatMessage{
			{
				ID:        "1",
				Sender:    "RajeshBhopal",
				Message:   "The potholes on Hoshangabad Road are getting worse every day. My car got damaged yesterday!",
				Timestamp: now.Add(-60 * time.Minute),
			},
			{
				ID:        "2",
				Sender:    "BMC Admin",
				Message:   "We have received multiple reports about Hoshangabad Road. Road repair work will begin next week during non-peak hours.",
				Timestamp: now.Add(-30 * time.Minute),
				IsAdmin:   true,
			},
			{
				ID:        "3",
				Sender:    "PriyaArera",
				Message:   "Great to see the water leakage issue near Shahpura Lake is being addressed quickly!",
				Timestamp: now.Add(-15 * time.Minute),
			},
			{
				ID:        "4",
				Sender:    "AmitVerma",
				Message:   "When will the garbage collection resume in Arera Colony? It's been 5 days now.",
				Timestamp: now.Add(-10 * time.Minute),
			},
		},
	}
}
