package object

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"
)

var _ = Describe("Object codec", func() {
	Describe("encodeDetail", func() {
		It("should wrap the document JSON as a string under Detail", func() {
			body, err := encodeDetail(map[string]interface{}{"name": "Masa", "stock": 3})
			Expect(err).NotTo(HaveOccurred())

			var outer map[string]string
			Expect(json.Unmarshal(body, &outer)).To(Succeed())
			Expect(outer).To(HaveKey("Detail"))
			Expect(outer["Detail"]).To(MatchJSON(`{"name":"Masa","stock":3}`))
		})

		It("should never leave a raw line break inside Detail", func() {
			body, err := encodeDetail(map[string]string{"detail": "line one\nline two\r\nend \"quoted\""})
			Expect(err).NotTo(HaveOccurred())

			var outer map[string]string
			Expect(json.Unmarshal(body, &outer)).To(Succeed())
			Expect(outer["Detail"]).NotTo(ContainSubstring("\n"))
			Expect(outer["Detail"]).NotTo(ContainSubstring("\r"))

			var inner map[string]string
			Expect(json.Unmarshal([]byte(outer["Detail"]), &inner)).To(Succeed())
			Expect(inner["detail"]).To(Equal("line one\nline two\r\nend \"quoted\""))
		})
	})

	Describe("normalizeID", func() {
		It("should copy _id.$oid into id", func() {
			out, err := normalizeID(json.RawMessage(`{"_id":{"$oid":"X"},"name":"a"}`))
			Expect(err).NotTo(HaveOccurred())

			var doc map[string]interface{}
			Expect(json.Unmarshal(out, &doc)).To(Succeed())
			Expect(doc["id"]).To(Equal("X"))
			Expect(doc["name"]).To(Equal("a"))
		})

		It("should prefer $oid over an existing id", func() {
			out, err := normalizeID(json.RawMessage(`{"_id":{"$oid":"X"},"id":"old"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(MatchJSON(`{"_id":{"$oid":"X"},"id":"X"}`))
		})

		It("should leave a scalar id untouched", func() {
			raw := json.RawMessage(`{"id":"u-1","name":"b"}`)
			out, err := normalizeID(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(raw))
		})

		It("should fall back to a scalar _id", func() {
			out, err := normalizeID(json.RawMessage(`{"_id":"abc"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(MatchJSON(`{"_id":"abc","id":"abc"}`))

			out, err = normalizeID(json.RawMessage(`{"_id":42}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(MatchJSON(`{"_id":42,"id":"42"}`))
		})

		It("should use _id when id is empty", func() {
			out, err := normalizeID(json.RawMessage(`{"_id":"abc","id":""}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(MatchJSON(`{"_id":"abc","id":"abc"}`))
		})

		It("should pass non-object items through", func() {
			out, err := normalizeID(json.RawMessage(`"plain"`))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(out)).To(Equal(`"plain"`))
		})
	})

	Describe("unwrapPayload", func() {
		It("should decode the inner JSON string", func() {
			out, err := unwrapPayload(json.RawMessage(`"[{\"a\":1}]"`))
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(MatchJSON(`[{"a":1}]`))
		})

		It("should reject an inner string that is not JSON", func() {
			_, err := unwrapPayload(json.RawMessage(`"not json"`))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("renderDocument", func() {
		It("should keep key order and operator names", func() {
			q, err := renderDocument(bson.D{{Key: "date", Value: bson.D{
				{Key: "$gte", Value: "2024-03-01"},
				{Key: "$lte", Value: "2024-03-31"},
			}}})
			Expect(err).NotTo(HaveOccurred())
			Expect(q).To(MatchJSON(`{"date":{"$gte":"2024-03-01","$lte":"2024-03-31"}}`))
		})
	})
})
