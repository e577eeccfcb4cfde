package persistence

import (
	"context"

	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
)

// Sample interfaces shipped with the seed command
const (
	InterfaceMaterials    = "MMI019"
	InterfaceCustomers    = "SDI003"
	InterfaceGoodsReceipt = "MMI021"
)

const goodsReceiptTemplate = `<?xml version="1.0" encoding="utf-8"?>
<ns0:MT_EntradaMercancia xmlns:ns0="urn:interfaz:erp:goods_receipt">
  <DT_Cabecera>
    <REFERENCIA>{REFERENCIA}</REFERENCIA>
  </DT_Cabecera>
</ns0:MT_EntradaMercancia>`

func timestamps() []integration.IntegrationField {
	return []integration.IntegrationField{
		{DbColumn: "created_at", DataType: integration.DataTypeCurrentTimestamp},
		{DbColumn: "updated_at", DataType: integration.DataTypeCurrentTimestamp},
	}
}

func fields(groups ...[]integration.IntegrationField) []integration.IntegrationField {
	var out []integration.IntegrationField
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DefaultProcesses returns the sample material master, customer master and
// goods receipt definitions. Field order is evaluation order.
func DefaultProcesses() []integration.IntegrationProcess {
	return []integration.IntegrationProcess{
		{
			ProcessName:   "SAP_MATERIAL_ITEM",
			InterfaceName: InterfaceMaterials,
			TargetTable:   "erp.item",
			XmlIterator:   "//*[local-name()='DT_MaterialesDetalleSAP']",
			Order:         1,
			Fields: fields([]integration.IntegrationField{
				{XmlPath: "MATNR", DbColumn: "code", DataType: integration.DataTypeString, IsKey: true},
				{XmlPath: "MAKTX", DbColumn: "description", DataType: integration.DataTypeString},
				{XmlPath: "NTGEW", DbColumn: "weight", DataType: integration.DataTypeDecimal},
				{DbColumn: "management_type", DataType: integration.DataTypeString, DefaultValue: "Standard"},
			}, timestamps(), []integration.IntegrationField{
				{XmlPath: "VTEXT1", DbColumn: "item_group_name", DataType: integration.DataTypeString,
					ReferenceTable: "erp.item_group", ReferenceColumn: "name"},
				{XmlPath: "MEINS", DbColumn: "measure_unit_name", DataType: integration.DataTypeString,
					ReferenceTable: "erp.measure_unit", ReferenceColumn: "name"},
			}),
		},
		{
			ProcessName:   "SAP_MATERIAL_SKU",
			InterfaceName: InterfaceMaterials,
			TargetTable:   "erp.sku",
			XmlIterator:   "//*[local-name()='DT_MaterialesDetalleSAP']",
			Order:         2,
			Fields: fields([]integration.IntegrationField{
				{XmlPath: "EAN11", DbColumn: "barcode", DataType: integration.DataTypeString, IsKey: true},
				{XmlPath: "MATNR", DbColumn: "item_code", DataType: integration.DataTypeString},
				{XmlPath: "MEINS", DbColumn: "type", DataType: integration.DataTypeString},
				{XmlPath: "MEINS", DbColumn: "measure_unit_name", DataType: integration.DataTypeString,
					ReferenceTable: "erp.measure_unit", ReferenceColumn: "name"},
				{XmlPath: "UMREZunidadPorCa", DbColumn: "equivalence", DataType: integration.DataTypeDecimal},
			}, timestamps()),
		},
		{
			ProcessName:   "SAP_MATERIAL_UOM",
			InterfaceName: InterfaceMaterials,
			TargetTable:   "erp.sku",
			XmlIterator:   "//*[local-name()='DT_UM']",
			Order:         3,
			Fields: fields([]integration.IntegrationField{
				{XmlPath: "EAN11", DbColumn: "barcode", DataType: integration.DataTypeString, IsKey: true},
				{XmlPath: "../MATNR", DbColumn: "item_code", DataType: integration.DataTypeString},
				{XmlPath: "MEINH", DbColumn: "type", DataType: integration.DataTypeString},
				{XmlPath: "MEINH", DbColumn: "measure_unit_name", DataType: integration.DataTypeString,
					ReferenceTable: "erp.measure_unit", ReferenceColumn: "name"},
				{XmlPath: "UMREZ", DbColumn: "equivalence", DataType: integration.DataTypeDecimal},
			}, timestamps()),
		},
		{
			ProcessName:   "SDI003_PARTNER_HEAD",
			InterfaceName: InterfaceCustomers,
			TargetTable:   "erp.partner",
			XmlIterator:   "//*[local-name()='DT_ClientesDetalleSAP' and *[local-name()='KTOKD']='0002']",
			Order:         1,
			Fields: fields([]integration.IntegrationField{
				{XmlPath: "KUNNR", DbColumn: "code", DataType: integration.DataTypeString, IsKey: true},
				{XmlPath: "STCD1", DbColumn: "rfc", DataType: integration.DataTypeString},
				{DbColumn: "type", DataType: integration.DataTypeString, DefaultValue: "Cliente"},
			}, timestamps(), []integration.IntegrationField{
				{XmlPath: "{NAME1} {NAME4}", DbColumn: "name", DataType: integration.DataTypeString},
				{DbColumn: "society_type", DataType: integration.DataTypeString, DefaultValue: "cliente"},
			}),
		},
		partnerAddress("SDI003_ADDR_MAIN", "0002", 2,
			"SUC_CLAVE | :{KUNNR}; *:{SUC_CLAVE}", integration.DataTypeInt, "LOEVM | X:true; *:false"),
		partnerAddress("SDI003_ADDR_BRANCH", "0018", 3,
			"SUC_CLAVE", integration.DataTypeString, "LOEVM | X:false; *:true"),
		{
			ProcessName:    "MMI021_GOODS_RECEIPT",
			InterfaceName:  InterfaceGoodsReceipt,
			TargetTable:    "erp.goods_receipt",
			Order:          1,
			XmlTemplate:    goodsReceiptTemplate,
			BodyNodeName:   "DT_Cabecera",
			DetailNodeName: "DT_Posicion",
			DetailTable:    "erp.goods_receipt_line",
			Fields: []integration.IntegrationField{
				{XmlPath: "{REFERENCIA}", DbColumn: integration.GeneratorQuickID},
				{XmlPath: "FOLIO", DbColumn: "code"},
				{XmlPath: "FECHA", DbColumn: "document_date"},
				{XmlPath: "PROVEEDOR", DbColumn: "supplier_code"},
				{XmlPath: "CENTRO", DbColumn: "cedis_code", DefaultValue: "1000"},
				{XmlPath: "ID_MENSAJE", DbColumn: integration.GeneratorGUID},
				{XmlPath: "EBELP", DbColumn: "line_number", IsDetailLine: true},
				{XmlPath: "MATNR", DbColumn: "item_code", IsDetailLine: true},
				{XmlPath: "MENGE", DbColumn: "quantity", IsDetailLine: true},
				{XmlPath: "MEINS", DbColumn: "measure_unit_name", DefaultValue: "PZA", IsDetailLine: true},
			},
		},
	}
}

func partnerAddress(name, accountGroup string, order int, codePath string, houseType integration.DataType, activeRule string) integration.IntegrationProcess {
	return integration.IntegrationProcess{
		ProcessName:   name,
		InterfaceName: InterfaceCustomers,
		TargetTable:   "erp.partner_addresses",
		XmlIterator:   "//*[local-name()='DT_ClientesDetalleSAP' and *[local-name()='KTOKD']='" + accountGroup + "']",
		Order:         order,
		Fields: fields([]integration.IntegrationField{
			{XmlPath: codePath, DbColumn: "code", DataType: integration.DataTypeString, IsKey: true},
			{XmlPath: "KUNNR", DbColumn: "partner_code", DataType: integration.DataTypeString},
			{XmlPath: "HOUSE_NUM1", DbColumn: "exterior_number", DataType: houseType},
			{XmlPath: "DISTRIB_SUBCHAN", DbColumn: "distribution channel", DataType: integration.DataTypeString},
			{XmlPath: "../DT_MasterData/CENTRO", DbColumn: "cedis_code", DataType: integration.DataTypeString},
			{XmlPath: activeRule, DbColumn: "active", DataType: integration.DataTypeBoolean},
		}, timestamps(), []integration.IntegrationField{
			{XmlPath: "POST_CODE1", DbColumn: "postal_code", DataType: integration.DataTypeString},
			{XmlPath: "BEZEI", DbColumn: "state", DataType: integration.DataTypeString},
			{XmlPath: "CITY2", DbColumn: "neighborhood", DataType: integration.DataTypeString},
			{XmlPath: "STREET", DbColumn: "street", DataType: integration.DataTypeString},
			{XmlPath: "{NAME1} {NAME4}", DbColumn: "address_name", DataType: integration.DataTypeString},
			{XmlPath: "CLI_AREACONTROL", DbColumn: "super_distribution_channel", DataType: integration.DataTypeString},
		}),
	}
}

// SeedDefaults stores DefaultProcesses, replacing processes with the same name.
// It returns the number of processes written.
func SeedDefaults(ctx context.Context, writer integration.ProcessWriter) (int, error) {
	processes := DefaultProcesses()
	for i := range processes {
		if err := writer.Save(ctx, &processes[i]); err != nil {
			return i, err
		}
	}
	return len(processes), nil
}
