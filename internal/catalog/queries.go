// internal/catalog/queries.go
package catalog

import _ "embed"

type refKind string

const (
	refDistricts        refKind = "districts"
	refServiceTypes     refKind = "service_types"
	refBeneficiaryTypes refKind = "beneficiary_types"
)

var listRefQueries = map[refKind]string{
	refDistricts:        `SELECT id, name FROM districts ORDER BY name`,
	refServiceTypes:     `SELECT id, name FROM service_types ORDER BY name`,
	refBeneficiaryTypes: `SELECT id, name FROM beneficiary_types ORDER BY name`,
}

var countQueries = map[string]string{
	"organizations": `SELECT COUNT(*) FROM organizations`,
	"service_types": `SELECT COUNT(*) FROM service_types`,
	"districts":     `SELECT COUNT(*) FROM districts`,
}

const organizationColumns = `
	SELECT o.id, o.name,
	       COALESCE(o.phone, ''), COALESCE(o.email, ''), COALESCE(o.website, ''),
	       COALESCE(o.other_services, ''), o.paid
	FROM organizations o`

const listOrganizationsQuery = organizationColumns + `
	ORDER BY o.name`

// searchOrganizationsQuery treats an empty parameter as "no condition".
// Parameters: district, service type, beneficiary type, name (all ILIKE
// patterns without the surrounding %), limit.
const searchOrganizationsQuery = organizationColumns + `
	WHERE ($1 = '' OR EXISTS (
	        SELECT 1 FROM organization_locations ol
	        JOIN districts d ON d.id = ol.district_id
	        WHERE ol.organization_id = o.id AND d.name ILIKE '%' || $1 || '%'))
	  AND ($2 = '' OR EXISTS (
	        SELECT 1 FROM organization_services os
	        JOIN service_types st ON st.id = os.service_type_id
	        WHERE os.organization_id = o.id AND st.name ILIKE '%' || $2 || '%'))
	  AND ($3 = '' OR EXISTS (
	        SELECT 1 FROM organization_beneficiaries ob
	        JOIN beneficiary_types bt ON bt.id = ob.beneficiary_type_id
	        WHERE ob.organization_id = o.id AND bt.name ILIKE '%' || $3 || '%'))
	  AND ($4 = '' OR o.name ILIKE '%' || $4 || '%')
	ORDER BY o.name
	LIMIT $5`

const organizationServicesQuery = `
	SELECT os.organization_id, st.id, st.name
	FROM organization_services os
	JOIN service_types st ON st.id = os.service_type_id
	WHERE os.organization_id::text = ANY($1)
	ORDER BY os.organization_id, st.name`

const organizationBeneficiariesQuery = `
	SELECT ob.organization_id, bt.id, bt.name
	FROM organization_beneficiaries ob
	JOIN beneficiary_types bt ON bt.id = ob.beneficiary_type_id
	WHERE ob.organization_id::text = ANY($1)
	ORDER BY ob.organization_id, bt.name`

const organizationLocationsQuery = `
	SELECT ol.organization_id, d.name, COALESCE(s.name, ''), COALESCE(c.name, ''), COALESCE(v.name, '')
	FROM organization_locations ol
	JOIN districts d ON d.id = ol.district_id
	LEFT JOIN sectors s ON s.id = ol.sector_id
	LEFT JOIN cells c ON c.id = ol.cell_id
	LEFT JOIN villages v ON v.id = ol.village_id
	WHERE ol.organization_id::text = ANY($1)
	ORDER BY ol.organization_id, d.name, s.name`

// Schema creates the directory tables. Statements are idempotent.
//
//go:embed schema.sql
var Schema string
