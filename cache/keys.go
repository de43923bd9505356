package cache

// Key builders for every cached resource. The strings are part of the
// service contract: each writer computes the same key its readers cache
// under, and invalidation deletes exactly those keys. Changing a format
// here silently decouples readers from writers.

// CartKey scopes the composite cart+items view of one user.
func CartKey(userID string) string {
	return "cart_" + userID
}

// ReviewsAllKey scopes the full review collection.
func ReviewsAllKey() string {
	return "reviews_all"
}

// ReviewTargetKey scopes reviews aimed at one seller or listing target.
func ReviewTargetKey(targetID string) string {
	return "reviews_target_" + targetID
}

// ReviewListingKey scopes reviews linked to one listing.
func ReviewListingKey(listingID string) string {
	return "reviews_listing_" + listingID
}

// InstitutionKey scopes a single financial institution.
func InstitutionKey(id string) string {
	return "institution_" + id
}

// InstitutionsAllKey scopes the full institution collection.
func InstitutionsAllKey() string {
	return "institutions_all"
}

// ProductsAllKey scopes the full financial product collection.
func ProductsAllKey() string {
	return "products_all"
}

// InstitutionProductsKey scopes the products of one institution.
func InstitutionProductsKey(institutionID string) string {
	return "products_institution_" + institutionID
}

// ApplicationsAllKey scopes the full financing application collection.
func ApplicationsAllKey() string {
	return "applications_all"
}

// UserApplicationsKey scopes the financing applications of one user.
func UserApplicationsKey(userID string) string {
	return "applications_user_" + userID
}
