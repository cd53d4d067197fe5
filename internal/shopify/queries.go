package shopify

// customerQuery fetches the profile fields shown on the landing page.
const customerQuery = `
query getCustomer($id: ID!) {
  customer(id: $id) {
    id
    firstName
    image {
      src
    }
  }
}
`

// productQuery fetches product detail without media.
const productQuery = `
query getProduct($id: ID!) {
  product(id: $id) {
    id
    title
    description
    onlineStoreUrl
  }
}
`

// productImageQuery fetches the first image media in position order.
const productImageQuery = `
query getProductImage($id: ID!) {
  product(id: $id) {
    media(first: 1, sortKey: POSITION, query: "media_type:IMAGE") {
      nodes {
        ... on MediaImage {
          id
          alt
          image {
            width
            height
            url
          }
        }
      }
    }
  }
}
`
