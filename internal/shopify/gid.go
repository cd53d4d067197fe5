package shopify

import "strings"

const gidPrefix = "gid://"

// CustomerGID promotes a bare customer ID to a Shopify global ID.
// Values that already are global IDs are returned unchanged.
func CustomerGID(id string) string {
	return toGID("Customer", id)
}

// ProductGID promotes a bare product ID to a Shopify global ID.
func ProductGID(id string) string {
	return toGID("Product", id)
}

func toGID(resource, id string) string {
	if strings.HasPrefix(id, gidPrefix) {
		return id
	}
	return gidPrefix + "shopify/" + resource + "/" + id
}
