package mongodb

import (
	"regexp"

	"github.com/inkcloud/review-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pure translation from filter structs to Mongo predicates. Only the
// present fields contribute clauses; the result is their conjunction.
// Kept free of collection access so it can be tested without a database.

func containsIgnoreCase(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

// buildReviewSearchQuery folds the active review filters with AND. The
// keyword matches product name, comment or author email; the date range is
// inclusive of both bounds and only applies when both are present.
func buildReviewSearchQuery(filter domain.ReviewSearchFilter) (bson.M, error) {
	query := bson.M{}

	if filter.Keyword != "" {
		re := containsIgnoreCase(filter.Keyword)
		query["$or"] = bson.A{
			bson.M{"product_name": re},
			bson.M{"comment": re},
			bson.M{"email": re},
		}
	}

	start, end, err := filter.DateRange()
	if err != nil {
		return nil, err
	}
	if start != nil {
		query["created_at"] = bson.M{"$gte": *start, "$lte": *end}
	}

	if filter.MinRating != nil || filter.MaxRating != nil {
		rating := bson.M{}
		if filter.MinRating != nil {
			rating["$gte"] = *filter.MinRating
		}
		if filter.MaxRating != nil {
			rating["$lte"] = *filter.MaxRating
		}
		query["rating"] = rating
	}

	return query, nil
}

// buildReportSearchQuery folds the active report filters with AND. The
// keyword matches the reason or the reporter email.
func buildReportSearchQuery(filter domain.ReportSearchFilter) (bson.M, error) {
	query := bson.M{}

	if filter.Type != nil {
		query["type"] = string(*filter.Type)
	}

	from, to, err := filter.DateRange()
	if err != nil {
		return nil, err
	}
	if from != nil {
		query["reported_at"] = bson.M{"$gte": *from, "$lte": *to}
	}

	if filter.Keyword != "" {
		re := containsIgnoreCase(filter.Keyword)
		query["$or"] = bson.A{
			bson.M{"reason": re},
			bson.M{"reporter_email": re},
		}
	}

	return query, nil
}
